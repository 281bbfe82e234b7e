package model

import (
	"strings"
	"time"
)

type Category string

const (
	BranchVisit        Category = "Branch Visit"
	EmployeeEvaluation Category = "Employee Evaluation"
	ReportProblem      Category = "Report Problem"
	Schedule           Category = "Schedule"
	Dashboard          Category = "Dashboard"
)

// Categories lists every category in menu order.
var Categories = []Category{BranchVisit, EmployeeEvaluation, ReportProblem, Schedule, Dashboard}

// Slug is the route segment for the category, e.g. "branch-visit".
func (c Category) Slug() string {
	return strings.Join(strings.Fields(strings.ToLower(string(c))), "-")
}

// IsForm reports whether the category is filled in through the submission form.
func (c Category) IsForm() bool {
	return c == BranchVisit || c == EmployeeEvaluation || c == ReportProblem
}

func CategoryFromSlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug() == slug {
			return c, true
		}
	}
	return "", false
}

// TimestampLayout matches the ISO strings the spreadsheet backend stores.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
}

type EmployeeEntry struct {
	ID   string `json:"id" form:"id"`
	Name string `json:"name" form:"name"`
}

// Blank reports whether both fields are empty.
func (e EmployeeEntry) Blank() bool {
	return e.ID == "" && e.Name == ""
}

type FormSubmission struct {
	ID          string          `json:"id"`
	Category    Category        `json:"category"`
	Timestamp   string          `json:"timestamp"`
	BranchName  string          `json:"branchName"`
	Supervisor  string          `json:"supervisor"`
	AreaManager string          `json:"areaManager"`
	District    string          `json:"district"`
	TeamLeader  string          `json:"teamLeader"`
	Employees   []EmployeeEntry `json:"employees"`
	Responses   Responses       `json:"responses"`
	Image       string          `json:"image,omitempty"`
}

type ScheduleEntry struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"`
	AssignTo      string   `json:"assignTo"`
	AccompaniedBy string   `json:"accompaniedBy"`
	District      string   `json:"district"`
	Branches      []string `json:"branches"`
	Purpose       string   `json:"purpose"`
	ApprovedBy    string   `json:"approvedBy"`
	Timestamp     string   `json:"timestamp"`
}
