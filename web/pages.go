package web

import (
	"html/template"
	"strings"

	"github.com/mbolis/branch-portal/form"
	"github.com/mbolis/branch-portal/history"
	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/refdata"
)

// Page carries what the layout needs on every screen.
type Page struct {
	Title string
	User  *model.User
	Nav   []model.Category
	Alert string
}

func NewPage(title string, user *model.User) Page {
	return Page{Title: title, User: user, Nav: model.Categories}
}

type SetupPage struct {
	Page
	Endpoint string
}

type LoginPage struct {
	Page
	Username string
}

type HomePage struct {
	Page
	Cards []model.Category
}

// Field is one question of a form together with its current answer.
type Field struct {
	Question model.Question
	Answer   model.Answer
}

// Name is the posted field holding the answer.
func (f Field) Name() string {
	return "resp-" + f.Question.ID
}

// OrderName is the posted field holding checkbox ticks in the order they
// were made.
func (f Field) OrderName() string {
	return "order-" + f.Question.ID
}

func (f Field) Options() []string {
	return f.Question.Control.Choices()
}

func (f Field) Selected(option string) bool {
	return f.Answer.Value == option
}

func (f Field) Checked(option string) bool {
	return refdata.Contains(f.Answer.Values, option)
}

type FormPage struct {
	Page
	Key   string
	Draft *form.Draft

	BranchQuery     string
	SupervisorQuery string
	Branches        []string
	Supervisors     []string
	AreaManagers    []string
	TeamLeaders     []string
}

// NewFormPage lists the select options of d, narrowed by the search boxes.
// A selected value filtered out by a search stays listed.
func NewFormPage(page Page, key string, d *form.Draft, branchQuery, supervisorQuery string) FormPage {
	return FormPage{
		Page:            page,
		Key:             key,
		Draft:           d,
		BranchQuery:     branchQuery,
		SupervisorQuery: supervisorQuery,
		Branches:        keepSelected(refdata.Search(refdata.Branches(), branchQuery), d.BranchName),
		Supervisors:     keepSelected(refdata.Search(refdata.Supervisors(), supervisorQuery), d.Supervisor),
		AreaManagers:    refdata.AreaManagers(),
		TeamLeaders:     refdata.TeamLeaders(),
	}
}

func (p FormPage) Fields() []Field {
	questions := p.Draft.Questions()
	fields := make([]Field, len(questions))
	for i, q := range questions {
		fields[i] = Field{q, p.Draft.Responses[q.ID]}
	}
	return fields
}

// Image is the evidence photo as a URL the page may embed.
func (p FormPage) Image() template.URL {
	if !strings.HasPrefix(p.Draft.Image, "data:image/") {
		return ""
	}
	return template.URL(p.Draft.Image)
}

type SubmittedPage struct {
	Page
	Category model.Category
}

type SchedulePage struct {
	Page
	Key   string
	Draft *form.ScheduleDraft

	Coordinators []string
	Companions   []string
	Districts    []string
}

func NewSchedulePage(page Page, key string, d *form.ScheduleDraft) SchedulePage {
	return SchedulePage{
		Page:         page,
		Key:          key,
		Draft:        d,
		Coordinators: refdata.Coordinators(),
		Companions:   refdata.Companions(),
		Districts:    refdata.Districts(),
	}
}

// ApprovedBy is printed in the approval box.
func (SchedulePage) ApprovedBy() string {
	return form.ApprovedBy
}

type DashboardPage struct {
	Page
	Tabs    []model.Category
	Query   string
	Table   history.Table
	Summary history.Summary
}

func keepSelected(options []string, selected string) []string {
	if selected == "" || refdata.Contains(options, selected) {
		return options
	}
	return append([]string{selected}, options...)
}
