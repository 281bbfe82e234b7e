package routes

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/branch-portal/app"
	"github.com/mbolis/branch-portal/form"
	"github.com/mbolis/branch-portal/history"
	"github.com/mbolis/branch-portal/httpx"
	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/refdata"
	"github.com/mbolis/branch-portal/session"
	"github.com/mbolis/branch-portal/web"
)

const (
	alertSubmission = "Error saving submission. Please try again."
	alertSchedule   = "Error saving schedule."
	alertInFlight   = "This form is already being submitted. Please wait."
)

// Form post buttons.
const (
	opRefresh        = "refresh"
	opAddEmployee    = "add-employee"
	opRemoveEmployee = "remove-employee:"
	opClearImage     = "clear-image"
	opAddBranch      = "add-branch"
	opRemoveBranch   = "remove-branch:"
	opSubmit         = "submit"
)

func page(r *http.Request, title string) web.Page {
	return web.NewPage(title, session.FromContext(r.Context()).User)
}

func Home(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(app, w, http.StatusOK, "home", web.HomePage{Page: page(r, "Home"), Cards: model.Categories})
	}
}

// ShowForm starts a blank submission form of category c.
func ShowForm(app app.App, c model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := web.NewFormPage(page(r, string(c)), form.NewID(), form.NewDraft(c), "", "")
		renderPage(app, w, http.StatusOK, "form", p)
	}
}

type draftFields struct {
	Key             string                `form:"key"`
	Op              string                `form:"op"`
	BranchQuery     string                `form:"branchQuery"`
	SupervisorQuery string                `form:"supervisorQuery"`
	BranchName      string                `form:"branchName"`
	Supervisor      string                `form:"supervisor"`
	AreaManager     string                `form:"areaManager"`
	TeamLeader      string                `form:"teamLeader"`
	Employees       []model.EmployeeEntry `form:"employees"`
	Image           string                `form:"image"`
}

// PostForm applies one button press to the posted submission form, then
// shows the form again or, after a successful submit, the submitted screen.
func PostForm(app app.App, c model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in draftFields
		if err := httpx.DecodeForm(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "form.parse_form")
			return
		}
		if in.Key == "" {
			in.Key = form.NewID()
		}

		d := in.draft(c)
		readResponses(d, r.PostForm)

		p := web.NewFormPage(page(r, string(c)), in.Key, d, in.BranchQuery, in.SupervisorQuery)
		status := http.StatusOK

		if err := readImage(d, r); err != nil {
			log.Debugf("form.image: %s", err)
			p.Alert = "Could not use the uploaded image: " + err.Error() + "."
			status = http.StatusBadRequest
		}

		switch op := in.Op; {
		case op == opAddEmployee:
			d.AddEmployee()
		case strings.HasPrefix(op, opRemoveEmployee):
			i, _ := strconv.Atoi(strings.TrimPrefix(op, opRemoveEmployee))
			if err := d.RemoveEmployee(i); err != nil {
				log.Debugf("form.remove_employee: %s (%d)", err, i)
			}
		case op == opClearImage:
			d.ClearImage()
		case op == opSubmit:
			if status != http.StatusOK {
				break
			}
			_, err := app.Engine.Submit(r.Context(), in.Key, d)
			if err == nil {
				renderPage(app, w, http.StatusOK, "submitted", web.SubmittedPage{Page: page(r, string(c)), Category: c})
				return
			}
			status, p.Alert = submitAlert(err, alertSubmission)
		}

		renderPage(app, w, status, "form", p)
	}
}

func (in draftFields) draft(c model.Category) *form.Draft {
	d := form.NewDraft(c)
	d.BranchName = in.BranchName
	d.Supervisor = in.Supervisor
	d.SelectAreaManager(in.AreaManager)
	d.TeamLeader = in.TeamLeader
	if in.Employees != nil {
		d.Employees = in.Employees
	}
	if strings.HasPrefix(in.Image, "data:image/") {
		d.Image = in.Image
	}
	return d
}

// readResponses copies the posted answers into d. Checkbox ticks carried
// over from the previous page keep their order; options ticked since are
// appended in display order.
func readResponses(d *form.Draft, post url.Values) {
	for _, q := range d.Questions() {
		name := "resp-" + q.ID
		if _, ok := q.Control.(model.Checkbox); ok {
			ticked := post[name]
			previous := post["order-"+q.ID]
			for _, v := range previous {
				if err := d.Check(q.ID, v, refdata.Contains(ticked, v)); err != nil {
					log.Debugf("form.check: %s", err)
				}
			}
			for _, v := range q.Control.Choices() {
				if refdata.Contains(ticked, v) && !refdata.Contains(previous, v) {
					if err := d.Check(q.ID, v, true); err != nil {
						log.Debugf("form.check: %s", err)
					}
				}
			}
			continue
		}
		if v := post.Get(name); v != "" {
			if err := d.Respond(q.ID, v); err != nil {
				log.Debugf("form.respond: %s", err)
			}
		}
	}
}

func readImage(d *form.Draft, r *http.Request) error {
	file, header, err := r.FormFile("imageFile")
	if err != nil {
		// no upload with this post
		return nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, form.MaxImageSize+1))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.SetImage(data, header.Header.Get("Content-Type"))
}

// submitAlert turns a failed submit into the status and alert of the page
// shown again.
func submitAlert(err error, saveAlert string) (int, string) {
	var invalid *multierror.Error
	switch {
	case errors.As(err, &invalid):
		msgs := make([]string, len(invalid.Errors))
		for i, e := range invalid.Errors {
			msgs[i] = e.Error()
		}
		return http.StatusUnprocessableEntity, "Please complete the form: " + strings.Join(msgs, ", ") + "."
	case errors.Is(err, form.ErrInFlight):
		return http.StatusConflict, alertInFlight
	default:
		return http.StatusBadGateway, saveAlert
	}
}

func ShowSchedule(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := web.NewSchedulePage(page(r, "Schedule"), form.NewID(), form.NewScheduleDraft())
		renderPage(app, w, http.StatusOK, "schedule", p)
	}
}

type scheduleFields struct {
	Key           string   `form:"key"`
	Op            string   `form:"op"`
	Date          string   `form:"date"`
	AssignTo      string   `form:"assignTo"`
	AccompaniedBy string   `form:"accompaniedBy"`
	District      string   `form:"district"`
	Branches      []string `form:"branches"`
	Purpose       string   `form:"purpose"`
}

// PostSchedule is PostForm for the schedule form. Branch slots are taken as
// posted, so a slot chosen under a previous district stays filled.
func PostSchedule(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in scheduleFields
		if err := httpx.DecodeForm(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "schedule.parse_form")
			return
		}
		if in.Key == "" {
			in.Key = form.NewID()
		}

		d := form.NewScheduleDraft()
		d.Date = in.Date
		d.AssignTo = in.AssignTo
		d.AccompaniedBy = in.AccompaniedBy
		d.SelectDistrict(in.District)
		if in.Branches != nil {
			d.Branches = in.Branches
		}
		d.Purpose = in.Purpose

		p := web.NewSchedulePage(page(r, "Schedule"), in.Key, d)
		status := http.StatusOK

		switch op := in.Op; {
		case op == opAddBranch:
			if err := d.AddBranch(); err != nil {
				p.Alert = "Please select a district first."
				status = http.StatusBadRequest
			}
		case strings.HasPrefix(op, opRemoveBranch):
			i, _ := strconv.Atoi(strings.TrimPrefix(op, opRemoveBranch))
			if err := d.RemoveBranch(i); err != nil {
				log.Debugf("schedule.remove_branch: %s (%d)", err, i)
			}
		case op == opSubmit:
			_, err := app.Engine.SubmitSchedule(r.Context(), in.Key, d)
			if err == nil {
				renderPage(app, w, http.StatusOK, "schedule-submitted", page(r, "Schedule"))
				return
			}
			status, p.Alert = submitAlert(err, alertSchedule)
		}

		renderPage(app, w, status, "schedule", p)
	}
}

// Dashboard shows the records of one tab, loaded afresh from the backend.
func Dashboard(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := model.BranchVisit
		if slug := r.URL.Query().Get("tab"); slug != "" {
			c, ok := model.CategoryFromSlug(slug)
			if !ok {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
			tab = c
		}
		query := r.URL.Query().Get("q")

		snap := history.Load(r.Context(), app.Remote)
		renderPage(app, w, http.StatusOK, "dashboard", web.DashboardPage{
			Page:    page(r, "Dashboard"),
			Tabs:    model.Categories,
			Query:   query,
			Table:   snap.Table(tab, query),
			Summary: snap.Summary(),
		})
	}
}
