package routes

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/branch-portal/app"
	"github.com/mbolis/branch-portal/form"
	"github.com/mbolis/branch-portal/history"
	"github.com/mbolis/branch-portal/httpx"
	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/refdata"
	"github.com/mbolis/branch-portal/routes/middlewares"
)

// Reference is every select list of the portal in one document.
type Reference struct {
	Branches     []string            `json:"branches"`
	Supervisors  []string            `json:"supervisors"`
	AreaManagers map[string]string   `json:"areaManagers"`
	TeamLeaders  []string            `json:"teamLeaders"`
	Coordinators []string            `json:"coordinators"`
	Companions   []string            `json:"companions"`
	Districts    map[string][]string `json:"districts"`
}

func GetReference(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := Reference{
			Branches:     refdata.Branches(),
			Supervisors:  refdata.Supervisors(),
			AreaManagers: map[string]string{},
			TeamLeaders:  refdata.TeamLeaders(),
			Coordinators: refdata.Coordinators(),
			Companions:   refdata.Companions(),
			Districts:    map[string][]string{},
		}
		for _, am := range refdata.AreaManagers() {
			ref.AreaManagers[am] = refdata.DistrictOf(am)
		}
		for _, d := range refdata.Districts() {
			ref.Districts[d] = refdata.BranchesOf(d)
		}
		render.JSON(w, r, ref)
	}
}

func GetQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		c, ok := model.CategoryFromSlug(slug)
		if !ok || !c.IsForm() {
			httpx.LogNotFound(w, "api.questions", slug)
			return
		}
		render.JSON(w, r, refdata.Questions(c))
	}
}

// GetDistrict answers the district of an area manager; an unknown name has
// district "".
func GetDistrict(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathParam(r, "name")
		render.JSON(w, r, map[string]string{
			"areaManager": name,
			"district":    refdata.DistrictOf(name),
		})
	}
}

// GetBranches lists the branches of a district; an unknown district has none.
func GetBranches(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, refdata.BranchesOf(pathParam(r, "district")))
	}
}

type submissionInput struct {
	Category    model.Category        `json:"category"`
	BranchName  string                `json:"branchName"`
	Supervisor  string                `json:"supervisor"`
	AreaManager string                `json:"areaManager"`
	TeamLeader  string                `json:"teamLeader"`
	Employees   []model.EmployeeEntry `json:"employees"`
	Responses   model.Responses       `json:"responses"`
	Image       string                `json:"image"`
}

// draft replays the input through the form operations, so an API
// submission obeys the same rules as one made on the portal.
func (in submissionInput) draft() (*form.Draft, error) {
	if !in.Category.IsForm() {
		return nil, errors.New("unknown category " + string(in.Category))
	}
	d := form.NewDraft(in.Category)
	d.BranchName = in.BranchName
	d.Supervisor = in.Supervisor
	d.SelectAreaManager(in.AreaManager)
	d.TeamLeader = in.TeamLeader
	if in.Employees != nil {
		d.Employees = in.Employees
	}

	var result *multierror.Error
	for qid, answer := range in.Responses {
		if answer.Multi {
			for _, v := range answer.Values {
				if err := d.Check(qid, v, true); err != nil {
					result = multierror.Append(result, err)
				}
			}
			if len(answer.Values) == 0 {
				if _, ok := refdata.Question(in.Category, qid); ok {
					d.Responses[qid] = model.Multiple()
				} else {
					result = multierror.Append(result, form.ErrUnknownQuestion)
				}
			}
			continue
		}
		if err := d.Respond(qid, answer.Value); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if in.Image != "" {
		if strings.HasPrefix(in.Image, "data:image/") {
			d.Image = in.Image
		} else {
			result = multierror.Append(result, form.ErrNotImage)
		}
	}
	return d, result.ErrorOrNil()
}

func CreateSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in submissionInput
		if err := render.DecodeJSON(r.Body, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "api.submission.parse_body")
			return
		}
		d, err := in.draft()
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "api.submission.draft", "%s", err)
			return
		}

		key := "api/" + middlewares.Username(r) + "/" + string(in.Category)
		sub, err := app.Engine.Submit(r.Context(), key, d)
		if !submitFailed(w, "api.submission", err) {
			render.Status(r, http.StatusCreated)
			render.JSON(w, r, sub)
		}
	}
}

type scheduleInput struct {
	Date          string   `json:"date"`
	AssignTo      string   `json:"assignTo"`
	AccompaniedBy string   `json:"accompaniedBy"`
	District      string   `json:"district"`
	Branches      []string `json:"branches"`
	Purpose       string   `json:"purpose"`
}

func CreateSchedule(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in scheduleInput
		if err := render.DecodeJSON(r.Body, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "api.schedule.parse_body")
			return
		}

		d := form.NewScheduleDraft()
		d.Date = in.Date
		d.AssignTo = in.AssignTo
		d.AccompaniedBy = in.AccompaniedBy
		d.SelectDistrict(in.District)
		d.Purpose = in.Purpose
		d.Branches = make([]string, len(in.Branches))
		for i, b := range in.Branches {
			if err := d.SetBranch(i, b); err != nil {
				httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "api.schedule.branch", "%s", err)
				return
			}
		}

		key := "api/" + middlewares.Username(r) + "/schedule"
		sch, err := app.Engine.SubmitSchedule(r.Context(), key, d)
		if !submitFailed(w, "api.schedule", err) {
			render.Status(r, http.StatusCreated)
			render.JSON(w, r, sch)
		}
	}
}

// submitFailed answers a failed submit. It reports whether err was not nil.
func submitFailed(w http.ResponseWriter, code string, err error) bool {
	var invalid *multierror.Error
	switch {
	case err == nil:
		return false
	case errors.As(err, &invalid):
		httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, code+".validate", "%s", err)
	case errors.Is(err, form.ErrInFlight):
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code+".in_flight", "%s", err)
	default:
		httpx.LogBadGateway(w, code+".save", err)
	}
	return true
}

// HistoryResponse is one dashboard tab plus the totals.
type HistoryResponse struct {
	Table   history.Table   `json:"table"`
	Summary history.Summary `json:"summary"`
}

func GetHistory(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := model.BranchVisit
		if slug := r.URL.Query().Get("tab"); slug != "" {
			c, ok := model.CategoryFromSlug(slug)
			if !ok {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "api.history.tab", "unknown tab %q", slug)
				return
			}
			tab = c
		}

		snap := history.Load(r.Context(), app.Remote)
		render.JSON(w, r, HistoryResponse{
			Table:   snap.Table(tab, r.URL.Query().Get("q")),
			Summary: snap.Summary(),
		})
	}
}

// pathParam is the unescaped URL parameter key.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
