// Package form holds the editable state of the submission and schedule forms
// and turns it into records for the remote store.
package form

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/refdata"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrWrongControl    = errors.New("answer does not fit the question control")
	ErrInvalidOption   = errors.New("not one of the question options")
	ErrNoRow           = errors.New("no such row")
	ErrNotImage        = errors.New("uploaded file is not an image")
)

// MaxImageSize bounds the evidence photo, before base64 encoding.
const MaxImageSize = 8 << 20

// Draft is a submission form being filled in.
type Draft struct {
	Category    model.Category
	BranchName  string
	Supervisor  string
	AreaManager string
	District    string
	TeamLeader  string
	Employees   []model.EmployeeEntry
	Responses   model.Responses
	Image       string

	submitted bool
}

func NewDraft(c model.Category) *Draft {
	return &Draft{
		Category:  c,
		Employees: []model.EmployeeEntry{{}},
		Responses: model.Responses{},
	}
}

func (d *Draft) Questions() []model.Question {
	return refdata.Questions(d.Category)
}

// Submitted reports whether the draft was handed to the store. A submitted
// draft cannot be submitted again.
func (d *Draft) Submitted() bool {
	return d.submitted
}

// SelectAreaManager sets the area manager and derives the district from it.
// An empty or unknown name clears the district.
func (d *Draft) SelectAreaManager(name string) {
	d.AreaManager = name
	d.District = refdata.DistrictOf(name)
}

func (d *Draft) AddEmployee() {
	d.Employees = append(d.Employees, model.EmployeeEntry{})
}

func (d *Draft) RemoveEmployee(i int) error {
	if i < 0 || i >= len(d.Employees) {
		return ErrNoRow
	}
	d.Employees = append(d.Employees[:i:i], d.Employees[i+1:]...)
	return nil
}

func (d *Draft) UpdateEmployee(i int, id, name string) error {
	if i < 0 || i >= len(d.Employees) {
		return ErrNoRow
	}
	d.Employees[i] = model.EmployeeEntry{ID: id, Name: name}
	return nil
}

// Respond records the answer to a text, dropdown or radio question,
// replacing any earlier one. An empty dropdown value is the unselected
// placeholder and is accepted.
func (d *Draft) Respond(questionID, value string) error {
	q, ok := refdata.Question(d.Category, questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	switch c := q.Control.(type) {
	case model.Text:
	case model.Dropdown:
		if value != "" && !q.HasOption(value) {
			return fmt.Errorf("%w: %q", ErrInvalidOption, value)
		}
	case model.Radio:
		if !q.HasOption(value) {
			return fmt.Errorf("%w: %q", ErrInvalidOption, value)
		}
	default:
		return fmt.Errorf("%w: %s is %s", ErrWrongControl, questionID, c.Kind())
	}
	d.Responses[questionID] = model.Single(value)
	return nil
}

// Check ticks or unticks a checkbox option. Ticked options are kept in the
// order they were ticked.
func (d *Draft) Check(questionID, option string, checked bool) error {
	q, ok := refdata.Question(d.Category, questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if _, ok := q.Control.(model.Checkbox); !ok {
		return fmt.Errorf("%w: %s is %s", ErrWrongControl, questionID, q.Control.Kind())
	}
	if !q.HasOption(option) {
		return fmt.Errorf("%w: %q", ErrInvalidOption, option)
	}

	current := d.Responses[questionID].Values
	updated := make([]string, 0, len(current)+1)
	for _, v := range current {
		if v != option {
			updated = append(updated, v)
		}
	}
	if checked {
		if refdata.Contains(current, option) {
			updated = current
		} else {
			updated = append(updated, option)
		}
	}
	d.Responses[questionID] = model.Multiple(updated...)
	return nil
}

// SetImage replaces the evidence photo with data, kept as a data URI.
func (d *Draft) SetImage(data []byte, contentType string) error {
	if len(data) > MaxImageSize {
		return fmt.Errorf("image larger than %d bytes", MaxImageSize)
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	d.Image = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return nil
}

func (d *Draft) ClearImage() {
	d.Image = ""
}

// Validate checks the required branch details.
func (d *Draft) Validate() error {
	var result *multierror.Error
	required := []struct{ field, value string }{
		{"branch name", d.BranchName},
		{"supervisor", d.Supervisor},
		{"area manager", d.AreaManager},
		{"team leader", d.TeamLeader},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			result = multierror.Append(result, fmt.Errorf("%s is required", r.field))
		}
	}
	if d.AreaManager != "" && d.District == "" {
		result = multierror.Append(result, fmt.Errorf("unknown area manager %q", d.AreaManager))
	}
	return result.ErrorOrNil()
}

// Build assembles the record to submit, dropping blank employee rows.
func (d *Draft) Build(id string, now time.Time) model.FormSubmission {
	employees := []model.EmployeeEntry{}
	for _, e := range d.Employees {
		if !e.Blank() {
			employees = append(employees, e)
		}
	}
	responses := make(model.Responses, len(d.Responses))
	for k, v := range d.Responses {
		responses[k] = v
	}
	return model.FormSubmission{
		ID:          id,
		Category:    d.Category,
		Timestamp:   model.Timestamp(now),
		BranchName:  d.BranchName,
		Supervisor:  d.Supervisor,
		AreaManager: d.AreaManager,
		District:    d.District,
		TeamLeader:  d.TeamLeader,
		Employees:   employees,
		Responses:   responses,
		Image:       d.Image,
	}
}
