// Package refdata holds the organisation tables and question sets the
// portal's select lists are built from.
package refdata

import (
	"strings"

	"github.com/mbolis/branch-portal/model"
)

var branches = []string{
	"NBC Riyadh Main", "NBC Jeddah Central", "NBC Dammam Coast",
	"NBC Al Khobar", "NBC Mecca South", "NBC Medina North",
}

var supervisors = []string{"Ahmed Ali", "Sarah Khan", "Omar Hassan", "Fatima Zahra"}

var areaManagers = map[string]string{
	"Khalid Ibrahim": "Central",
	"Mariam Saeed":   "Western",
	"Yousef Saleh":   "Eastern",
	"Noura Ahmad":    "Southern",
}

var areaManagerOrder = []string{"Khalid Ibrahim", "Mariam Saeed", "Yousef Saleh", "Noura Ahmad"}

var teamLeaders = []string{"TL-01 Samer", "TL-02 Laila", "TL-03 Kareem"}

var coordinators = []string{"TC-Sufyan", "TC-Elmer"}

var companions = []string{"FTS-Hashim Toba", "FTS-Mohammad Ali Mubarak"}

var districtBranches = map[string][]string{
	"Central":  {"NBC Riyadh Main", "NBC Diriyah"},
	"Western":  {"NBC Jeddah Central", "NBC Mecca South", "NBC Medina North"},
	"Eastern":  {"NBC Dammam Coast", "NBC Al Khobar", "NBC Jubail"},
	"Southern": {"NBC Abha", "NBC Khamis Mushait"},
}

var districtOrder = []string{"Central", "Western", "Eastern", "Southern"}

var questions = map[model.Category][]model.Question{
	model.BranchVisit: {
		{ID: "bv1", Text: "Is the branch clean and well-maintained?", Control: model.Radio{Options: []string{"Yes", "No", "N/A"}}},
		{ID: "bv2", Text: "Stock availability status", Control: model.Dropdown{Options: []string{"Full", "Partial", "Critical"}}},
		{ID: "bv3", Text: "Customer service observation", Control: model.Text{}},
		{ID: "bv4", Text: "Staff uniforms in order?", Control: model.Checkbox{Options: []string{"Clean", "Ironed", "Nametag"}}},
	},
	model.EmployeeEvaluation: {
		{ID: "ee1", Text: "Punctuality", Control: model.Radio{Options: []string{"Excellent", "Good", "Fair", "Poor"}}},
		{ID: "ee2", Text: "Technical Skills Proficiency", Control: model.Dropdown{Options: []string{"Beginner", "Intermediate", "Expert"}}},
		{ID: "ee3", Text: "Area of improvement", Control: model.Text{}},
	},
	model.ReportProblem: {
		{ID: "rp1", Text: "Severity Level", Control: model.Radio{Options: []string{"High", "Medium", "Low"}}},
		{ID: "rp2", Text: "Problem Description", Control: model.Text{}},
		{ID: "rp3", Text: "Immediate Action Taken", Control: model.Text{}},
	},
}

// Questions returns the question set of a category in display order.
func Questions(c model.Category) []model.Question {
	return append([]model.Question{}, questions[c]...)
}

// Question finds a question of the category by id.
func Question(c model.Category, id string) (model.Question, bool) {
	for _, q := range questions[c] {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// DistrictOf returns the district managed by the area manager, or "".
func DistrictOf(areaManager string) string {
	return areaManagers[areaManager]
}

// BranchesOf returns the branches of a district, or an empty list.
func BranchesOf(district string) []string {
	return clone(districtBranches[district])
}

// InDistrict reports whether branch belongs to district.
func InDistrict(district, branch string) bool {
	for _, b := range districtBranches[district] {
		if b == branch {
			return true
		}
	}
	return false
}

func Branches() []string     { return clone(branches) }
func Supervisors() []string  { return clone(supervisors) }
func TeamLeaders() []string  { return clone(teamLeaders) }
func Coordinators() []string { return clone(coordinators) }
func Companions() []string   { return clone(companions) }
func Districts() []string    { return clone(districtOrder) }

func AreaManagers() []string { return clone(areaManagerOrder) }

// Search keeps the entries containing query, ignoring case.
func Search(list []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []string{}
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), query) {
			out = append(out, s)
		}
	}
	return out
}

func Contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clone(list []string) []string {
	return append([]string{}, list...)
}
