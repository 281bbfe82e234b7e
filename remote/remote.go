// Package remote moves submissions and schedules to and from the
// spreadsheet backend.
package remote

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mbolis/branch-portal/model"
)

// Store is the boundary to the external persistence. Saves hand ownership of
// the record to the backend; nothing is kept locally.
type Store interface {
	SaveSubmission(ctx context.Context, s model.FormSubmission) error
	SaveSchedule(ctx context.Context, s model.ScheduleEntry) error
	GetSubmissions(ctx context.Context) ([]model.FormSubmission, error)
	GetSchedules(ctx context.Context) ([]model.ScheduleEntry, error)
}

const (
	ActionSaveSubmission = "saveSubmission"
	ActionSaveSchedule   = "saveSchedule"
	ActionGetPortalData  = "getPortalData"
)

var ErrNotConfigured = errors.New("backend endpoint not configured")

func decodeSubmissions(data *PortalData) []model.FormSubmission {
	out := []model.FormSubmission{}
	if data == nil {
		return out
	}
	for _, row := range data.Submissions {
		out = append(out, DecodeSubmissionRow(row))
	}
	return out
}

func decodeSchedules(data *PortalData) []model.ScheduleEntry {
	out := []model.ScheduleEntry{}
	if data == nil {
		return out
	}
	for _, row := range data.Schedules {
		out = append(out, DecodeScheduleRow(row))
	}
	return out
}
