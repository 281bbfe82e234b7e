package form

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/refdata"
)

// ApprovedBy signs every schedule.
const ApprovedBy = "Mr. Mohammad Aldos"

var (
	ErrNoDistrict    = errors.New("select a district first")
	ErrNotInDistrict = errors.New("branch is not in the selected district")
)

// ScheduleDraft is a visit schedule being planned.
type ScheduleDraft struct {
	Date          string
	AssignTo      string
	AccompaniedBy string
	District      string
	Branches      []string
	Purpose       string

	submitted bool
}

func NewScheduleDraft() *ScheduleDraft {
	return &ScheduleDraft{Branches: []string{""}}
}

func (d *ScheduleDraft) Submitted() bool {
	return d.submitted
}

// SelectDistrict changes the district. Branch slots chosen under a previous
// district are kept as they are.
func (d *ScheduleDraft) SelectDistrict(district string) {
	d.District = district
}

// BranchOptions lists the branches a slot may hold.
func (d *ScheduleDraft) BranchOptions() []string {
	return refdata.BranchesOf(d.District)
}

func (d *ScheduleDraft) AddBranch() error {
	if d.District == "" {
		return ErrNoDistrict
	}
	d.Branches = append(d.Branches, "")
	return nil
}

func (d *ScheduleDraft) RemoveBranch(i int) error {
	if i < 0 || i >= len(d.Branches) {
		return ErrNoRow
	}
	d.Branches = append(d.Branches[:i:i], d.Branches[i+1:]...)
	return nil
}

// SetBranch fills slot i. The same branch may sit in several slots; "" empties
// the slot.
func (d *ScheduleDraft) SetBranch(i int, branch string) error {
	if i < 0 || i >= len(d.Branches) {
		return ErrNoRow
	}
	if branch != "" {
		if d.District == "" {
			return ErrNoDistrict
		}
		if !refdata.InDistrict(d.District, branch) {
			return fmt.Errorf("%w: %s", ErrNotInDistrict, branch)
		}
	}
	d.Branches[i] = branch
	return nil
}

func (d *ScheduleDraft) Validate() error {
	var result *multierror.Error
	required := []struct{ field, value string }{
		{"date of visit", d.Date},
		{"assign to", d.AssignTo},
		{"accompanied by", d.AccompaniedBy},
		{"district", d.District},
		{"purpose of visit", d.Purpose},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			result = multierror.Append(result, fmt.Errorf("%s is required", r.field))
		}
	}
	if d.Date != "" {
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			result = multierror.Append(result, fmt.Errorf("date of visit %q is not a date", d.Date))
		}
	}
	return result.ErrorOrNil()
}

// Build assembles the schedule, dropping empty branch slots.
func (d *ScheduleDraft) Build(id string, now time.Time) model.ScheduleEntry {
	branches := []string{}
	for _, b := range d.Branches {
		if b != "" {
			branches = append(branches, b)
		}
	}
	return model.ScheduleEntry{
		ID:            id,
		Date:          d.Date,
		AssignTo:      d.AssignTo,
		AccompaniedBy: d.AccompaniedBy,
		District:      d.District,
		Branches:      branches,
		Purpose:       d.Purpose,
		ApprovedBy:    ApprovedBy,
		Timestamp:     model.Timestamp(now),
	}
}
