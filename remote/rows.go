package remote

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/mbolis/branch-portal/model"
)

// PortalData is the body returned by the backend read operation. Each row is
// a fixed-position list of sheet cells.
type PortalData struct {
	Submissions [][]any `json:"submissions"`
	Schedules   [][]any `json:"schedules"`
}

// Submission sheet columns.
const (
	subID = iota
	subTimestamp
	subCategory
	subBranchName
	subSupervisor
	subAreaManager
	subDistrict
	subTeamLeader
	subEmployees
	subResponses
	subImage
)

// Schedule sheet columns.
const (
	schID = iota
	schTimestamp
	schDate
	schAssignTo
	schAccompaniedBy
	schDistrict
	schBranches
	schPurpose
	schApprovedBy
)

// BranchSeparator joins the branches of a schedule in a single sheet cell.
const BranchSeparator = ", "

func DecodeSubmissionRow(row []any) model.FormSubmission {
	return model.FormSubmission{
		ID:          cell(row, subID),
		Timestamp:   cell(row, subTimestamp),
		Category:    model.Category(cell(row, subCategory)),
		BranchName:  cell(row, subBranchName),
		Supervisor:  cell(row, subSupervisor),
		AreaManager: cell(row, subAreaManager),
		District:    cell(row, subDistrict),
		TeamLeader:  cell(row, subTeamLeader),
		Employees:   DecodeEmployees(cell(row, subEmployees)),
		Responses:   DecodeResponses(cell(row, subResponses)),
		Image:       cell(row, subImage),
	}
}

func DecodeScheduleRow(row []any) model.ScheduleEntry {
	return model.ScheduleEntry{
		ID:            cell(row, schID),
		Timestamp:     cell(row, schTimestamp),
		Date:          cell(row, schDate),
		AssignTo:      cell(row, schAssignTo),
		AccompaniedBy: cell(row, schAccompaniedBy),
		District:      cell(row, schDistrict),
		Branches:      branchesCell(row, schBranches),
		Purpose:       cell(row, schPurpose),
		ApprovedBy:    cell(row, schApprovedBy),
	}
}

// EncodeSubmissionRow lays a submission out in sheet column order, the way
// the backend script stores it.
func EncodeSubmissionRow(s model.FormSubmission) ([]any, error) {
	employees, err := json.Marshal(nonNilEmployees(s.Employees))
	if err != nil {
		return nil, err
	}
	responses := s.Responses
	if responses == nil {
		responses = model.Responses{}
	}
	answers, err := json.Marshal(responses)
	if err != nil {
		return nil, err
	}
	return []any{
		s.ID, s.Timestamp, string(s.Category), s.BranchName, s.Supervisor,
		s.AreaManager, s.District, s.TeamLeader, string(employees), string(answers), s.Image,
	}, nil
}

func EncodeScheduleRow(s model.ScheduleEntry) []any {
	return []any{
		s.ID, s.Timestamp, s.Date, s.AssignTo, s.AccompaniedBy, s.District,
		strings.Join(s.Branches, BranchSeparator), s.Purpose, s.ApprovedBy,
	}
}

// DecodeEmployees parses the JSON employees cell. Empty or malformed input
// yields an empty list.
func DecodeEmployees(raw string) []model.EmployeeEntry {
	employees := []model.EmployeeEntry{}
	if raw == "" {
		return employees
	}
	if err := json.Unmarshal([]byte(raw), &employees); err != nil || employees == nil {
		return []model.EmployeeEntry{}
	}
	return employees
}

// DecodeResponses parses the JSON responses cell. Empty or malformed input
// yields an empty mapping.
func DecodeResponses(raw string) model.Responses {
	responses := model.Responses{}
	if raw == "" {
		return responses
	}
	if err := json.Unmarshal([]byte(raw), &responses); err != nil || responses == nil {
		return model.Responses{}
	}
	return responses
}

func nonNilEmployees(list []model.EmployeeEntry) []model.EmployeeEntry {
	if list == nil {
		return []model.EmployeeEntry{}
	}
	return list
}

// cell renders the value at column i as text; missing columns are "".
func cell(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	switch v := row[i].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		// nested arrays or objects the script already parsed
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func branchesCell(row []any, i int) []string {
	branches := []string{}
	if i >= len(row) {
		return branches
	}
	switch v := row[i].(type) {
	case []any:
		for _, b := range v {
			if s := cell([]any{b}, 0); s != "" {
				branches = append(branches, s)
			}
		}
	default:
		joined := cell(row, i)
		if joined == "" {
			return branches
		}
		branches = append(branches, strings.Split(joined, BranchSeparator)...)
	}
	return branches
}
