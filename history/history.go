// Package history builds the read-only tables of the dashboard screen.
package history

import (
	"context"
	"strings"

	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/remote"
)

// Snapshot is what the dashboard shows after one load.
type Snapshot struct {
	Submissions []model.FormSubmission `json:"submissions"`
	Schedules   []model.ScheduleEntry  `json:"schedules"`
}

// Load fetches submissions, then schedules. Read failures are only logged:
// the dashboard then shows empty tables.
func Load(ctx context.Context, store remote.Store) Snapshot {
	empty := Snapshot{Submissions: []model.FormSubmission{}, Schedules: []model.ScheduleEntry{}}

	subs, err := store.GetSubmissions(ctx)
	if err != nil {
		log.WithError(err).Error("history.load.submissions")
		return empty
	}
	schs, err := store.GetSchedules(ctx)
	if err != nil {
		log.WithError(err).Error("history.load.schedules")
		return empty
	}
	if subs == nil {
		subs = empty.Submissions
	}
	if schs == nil {
		schs = empty.Schedules
	}
	return Snapshot{subs, schs}
}

// Table is the content of one dashboard tab. Exactly one of its lists is
// used, depending on the tab; the Dashboard tab has no rows.
type Table struct {
	Tab         model.Category         `json:"tab"`
	Submissions []model.FormSubmission `json:"submissions,omitempty"`
	Schedules   []model.ScheduleEntry  `json:"schedules,omitempty"`
	Placeholder bool                   `json:"placeholder,omitempty"`
}

// Table selects the rows of a tab, keeping those matching query.
func (s Snapshot) Table(tab model.Category, query string) Table {
	t := Table{Tab: tab}
	query = strings.ToLower(strings.TrimSpace(query))

	switch {
	case tab == model.Dashboard:
		t.Placeholder = true
	case tab == model.Schedule:
		t.Schedules = []model.ScheduleEntry{}
		for _, sch := range s.Schedules {
			if matches(query, sch.District, sch.AssignTo, sch.AccompaniedBy, sch.Purpose, strings.Join(sch.Branches, " ")) {
				t.Schedules = append(t.Schedules, sch)
			}
		}
	default:
		t.Submissions = []model.FormSubmission{}
		for _, sub := range s.Submissions {
			if sub.Category != tab {
				continue
			}
			if matches(query, sub.BranchName, sub.Supervisor, sub.District, sub.AreaManager, sub.TeamLeader) {
				t.Submissions = append(t.Submissions, sub)
			}
		}
	}
	return t
}

// Summary feeds the totals widget.
type Summary struct {
	Submissions int                    `json:"submissions"`
	Schedules   int                    `json:"schedules"`
	ByCategory  map[model.Category]int `json:"byCategory"`
}

// Total counts every record, submissions and schedules alike.
func (s Summary) Total() int {
	return s.Submissions + s.Schedules
}

func (s Snapshot) Summary() Summary {
	sum := Summary{
		Submissions: len(s.Submissions),
		Schedules:   len(s.Schedules),
		ByCategory:  map[model.Category]int{},
	}
	for _, sub := range s.Submissions {
		sum.ByCategory[sub.Category]++
	}
	return sum
}

func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
