package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mbolis/branch-portal/app"
	"github.com/mbolis/branch-portal/config"
	"github.com/mbolis/branch-portal/database"
	"github.com/mbolis/branch-portal/form"
	"github.com/mbolis/branch-portal/httpx"
	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/routes/middlewares"
	"github.com/mbolis/branch-portal/session"
	"github.com/mbolis/branch-portal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock remote.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSubmission(ctx context.Context, s model.FormSubmission) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStore) SaveSchedule(ctx context.Context, s model.ScheduleEntry) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStore) GetSubmissions(ctx context.Context) ([]model.FormSubmission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FormSubmission), args.Error(1)
}

func (m *MockStore) GetSchedules(ctx context.Context) ([]model.ScheduleEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScheduleEntry), args.Error(1)
}

func newServer(t *testing.T, store *MockStore, transport config.Transport) *httptest.Server {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "portal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pages, err := web.NewRenderer()
	require.NoError(t, err)

	cfg := config.Config{TokenSecret: "secret", TokenTTL: time.Hour, Transport: transport}
	a := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Sessions:     session.NewManager(session.NewStore(db), transport == config.TransportHTTP, ""),
		Remote:       store,
		Engine:       form.NewEngine(store),
		Pages:        pages,
	}

	srv := httptest.NewServer(Wire(a))
	t.Cleanup(srv.Close)
	return srv
}

// newClient keeps cookies and does not follow redirects.
func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func post(t *testing.T, c *http.Client, u string, values url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(u, values)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func signIn(t *testing.T, srv *httptest.Server) *http.Client {
	t.Helper()
	c := newClient(t)
	resp, _ := post(t, c, srv.URL+"/login", url.Values{"username": {"ali"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	return c
}

func TestSetupGate(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportHTTP)
	c := newClient(t)

	for _, path := range []string{"/", "/dashboard", "/schedule"} {
		resp, body := get(t, c, srv.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Connect Backend", path)
	}

	// login is refused until the backend is configured
	resp, _ := post(t, c, srv.URL+"/login", url.Values{"username": {"ali"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body := get(t, c, srv.URL+"/")
	assert.Contains(t, body, "Connect Backend")

	resp, body = post(t, c, srv.URL+"/setup", url.Values{"endpoint": {"https://example.com/exec"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please enter a valid Google Apps Script Web App URL.")

	resp, _ = post(t, c, srv.URL+"/setup", url.Values{"endpoint": {"https://script.google.com/macros/s/abc/exec"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = get(t, c, srv.URL+"/")
	assert.Contains(t, body, "NBC PORTAL")
}

func TestSetupIsPerDevice(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportHTTP)

	c1 := newClient(t)
	post(t, c1, srv.URL+"/setup", url.Values{"endpoint": {"https://script.google.com/macros/s/abc/exec"}})

	_, body := get(t, newClient(t), srv.URL+"/")
	assert.Contains(t, body, "Connect Backend")
}

func TestDeviceCookie(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := newClient(t)

	resp, _ := get(t, c, srv.URL+"/")
	require.Len(t, resp.Cookies(), 1)
	assert.Equal(t, middlewares.ClientCookie, resp.Cookies()[0].Name)

	resp, _ = get(t, c, srv.URL+"/")
	assert.Empty(t, resp.Cookies())
}

func TestLoginGate(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := newClient(t)

	_, body := get(t, c, srv.URL+"/schedule")
	assert.Contains(t, body, "NBC PORTAL")

	resp, body := post(t, c, srv.URL+"/login", url.Values{"username": {"ali"}, "password": {""}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please enter both username and password.")

	resp, _ = post(t, c, srv.URL+"/login", url.Values{"username": {"ali"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = get(t, c, srv.URL+"/")
	assert.Contains(t, body, "Training Dashboard")
	assert.Contains(t, body, "ali")
	assert.Contains(t, body, "Training Coordinator")

	resp, _ = post(t, c, srv.URL+"/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = get(t, c, srv.URL+"/")
	assert.Contains(t, body, "NBC PORTAL")
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := signIn(t, srv)

	resp, _ := get(t, c, srv.URL+"/no/such/page")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestFormPages(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := signIn(t, srv)

	for _, cat := range []model.Category{model.BranchVisit, model.EmployeeEvaluation, model.ReportProblem} {
		resp, body := get(t, c, srv.URL+"/"+cat.Slug())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, string(cat)+" Form")
	}
}

func TestFormEmployeeRows(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := signIn(t, srv)

	_, body := post(t, c, srv.URL+"/branch-visit", url.Values{
		"key":              {"k1"},
		"op":               {"add-employee"},
		"employees.0.name": {"Ali"},
		"employees.0.id":   {"7"},
		"areaManager":      {"Mariam Saeed"},
		"branchQuery":      {"jeddah"},
		"branchName":       {"NBC Jeddah Central"},
		"supervisorQuery":  {""},
		"resp-bv3":         {"Friendly"},
	})
	assert.Contains(t, body, `name="employees.0.name" value="Ali"`)
	assert.Contains(t, body, `name="employees.1.name"`)
	assert.Contains(t, body, "remove-employee:1")
	assert.Contains(t, body, `value="Western"`)
	assert.Contains(t, body, "<option selected>NBC Jeddah Central</option>")
	assert.NotContains(t, body, "NBC Riyadh Main")
	assert.Contains(t, body, ">Friendly</textarea>")

	_, body = post(t, c, srv.URL+"/branch-visit", url.Values{
		"key":              {"k1"},
		"op":               {"remove-employee:0"},
		"employees.0.name": {"Ali"},
		"employees.1.name": {"Sara"},
	})
	assert.Contains(t, body, `name="employees.0.name" value="Sara"`)
	assert.NotContains(t, body, "employees.1.name")
}

func TestFormImage(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := signIn(t, srv)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("op", "refresh"))
	fw, err := mw.CreateFormFile("imageFile", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := c.Post(srv.URL+"/branch-visit", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `src="data:image/png;base64,`)
	assert.Contains(t, body, "clear-image")

	var image string
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(line, `name="image"`) {
			image = line[strings.Index(line, "data:image/"):strings.LastIndex(line, `"`)]
		}
	}
	require.NotEmpty(t, image)

	_, body = post(t, c, srv.URL+"/branch-visit", url.Values{"op": {"clear-image"}, "image": {image}})
	assert.NotContains(t, body, "data:image/png")
	assert.Contains(t, body, "Upload or Capture Image")
}

func TestFormRejectsNonImageUpload(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := signIn(t, srv)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("imageFile", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("just some text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := c.Post(srv.URL+"/report-problem", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Could not use the uploaded image")
}

func branchVisit() url.Values {
	return url.Values{
		"key":              {"k1"},
		"op":               {"submit"},
		"branchName":       {"NBC Al Khobar"},
		"supervisor":       {"Sarah Khan"},
		"areaManager":      {"Yousef Saleh"},
		"teamLeader":       {"TL-01 Samer"},
		"employees.0.name": {""},
		"employees.0.id":   {""},
		"employees.1.name": {"Ali"},
		"employees.1.id":   {"7"},
		"resp-bv1":         {"Yes"},
		"resp-bv4":         {"Clean", "Nametag"},
		"order-bv4":        {"Nametag"},
	}
}

func TestFormSubmit(t *testing.T) {
	store := new(MockStore)
	var got model.FormSubmission
	store.On("SaveSubmission", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(model.FormSubmission) }).
		Return(nil)

	srv := newServer(t, store, config.TransportMock)
	c := signIn(t, srv)

	resp, body := post(t, c, srv.URL+"/branch-visit", branchVisit())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Form Submitted!")
	assert.Contains(t, body, "Create New Form")

	store.AssertExpectations(t)
	assert.Len(t, got.ID, form.IDLength)
	assert.Equal(t, model.BranchVisit, got.Category)
	assert.Equal(t, "Eastern", got.District)
	assert.Equal(t, []model.EmployeeEntry{{ID: "7", Name: "Ali"}}, got.Employees)
	assert.Equal(t, model.Single("Yes"), got.Responses["bv1"])
	assert.Equal(t, model.Multiple("Nametag", "Clean"), got.Responses["bv4"])
	assert.NotContains(t, got.Responses, "bv2")
}

func TestFormSubmitFailureKeepsFields(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSubmission", mock.Anything, mock.Anything).Return(errors.New("offline"))

	srv := newServer(t, store, config.TransportMock)
	c := signIn(t, srv)

	resp, body := post(t, c, srv.URL+"/branch-visit", branchVisit())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Error saving submission. Please try again.")
	assert.Contains(t, body, `name="employees.1.name" value="Ali"`)
	assert.Contains(t, body, "<option selected>NBC Al Khobar</option>")
	assert.Contains(t, body, `name="order-bv4" value="Nametag"`)
	assert.Contains(t, body, `name="order-bv4" value="Clean"`)
}

func TestFormSubmitIncomplete(t *testing.T) {
	store := new(MockStore)
	srv := newServer(t, store, config.TransportMock)
	c := signIn(t, srv)

	resp, body := post(t, c, srv.URL+"/employee-evaluation", url.Values{"op": {"submit"}, "supervisor": {"Ahmed Ali"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "branch name is required")
	assert.NotContains(t, body, "supervisor is required")
	store.AssertNotCalled(t, "SaveSubmission", mock.Anything, mock.Anything)
}

func schedule() url.Values {
	return url.Values{
		"key":           {"s1"},
		"op":            {"submit"},
		"date":          {"2024-05-03"},
		"assignTo":      {"TC-Sufyan"},
		"accompaniedBy": {"FTS-Hashim Toba"},
		"district":      {"Eastern"},
		"branches.0":    {"NBC Jubail"},
		"branches.1":    {""},
		"branches.2":    {"NBC Jubail"},
		"purpose":       {"Audit"},
	}
}

func TestScheduleSubmit(t *testing.T) {
	store := new(MockStore)
	var got model.ScheduleEntry
	store.On("SaveSchedule", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(model.ScheduleEntry) }).
		Return(nil)

	srv := newServer(t, store, config.TransportMock)
	c := signIn(t, srv)

	resp, body := post(t, c, srv.URL+"/schedule", schedule())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Schedule Created!")

	assert.Equal(t, []string{"NBC Jubail", "NBC Jubail"}, got.Branches)
	assert.Equal(t, form.ApprovedBy, got.ApprovedBy)
	assert.Equal(t, "2024-05-03", got.Date)
}

func TestScheduleSubmitFailure(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSchedule", mock.Anything, mock.Anything).Return(errors.New("offline"))

	srv := newServer(t, store, config.TransportMock)
	c := signIn(t, srv)

	resp, body := post(t, c, srv.URL+"/schedule", schedule())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Error saving schedule.")
	assert.Contains(t, body, `name="branches.2"`)
}

func TestScheduleBranchSlots(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := signIn(t, srv)

	resp, body := post(t, c, srv.URL+"/schedule", url.Values{"op": {"add-branch"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please select a district first.")

	_, body = post(t, c, srv.URL+"/schedule", url.Values{"op": {"add-branch"}, "district": {"Eastern"}, "branches.0": {"NBC Jubail"}})
	assert.Contains(t, body, `name="branches.1"`)

	// a branch picked under another district stays in its slot
	_, body = post(t, c, srv.URL+"/schedule", url.Values{"op": {"refresh"}, "district": {"Central"}, "branches.0": {"NBC Jubail"}})
	assert.Contains(t, body, "<option selected>NBC Jubail</option>")
	assert.Contains(t, body, "<option>NBC Diriyah</option>")

	_, body = post(t, c, srv.URL+"/schedule", url.Values{"op": {"remove-branch:0"}, "district": {"Central"}, "branches.0": {"NBC Jubail"}})
	assert.NotContains(t, body, "branches.0")
}

func TestOversizedRowIndex(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	c := signIn(t, srv)

	resp, _ := post(t, c, srv.URL+"/branch-visit", url.Values{"op": {"refresh"}, "employees.50000000.name": {"x"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, c, srv.URL+"/schedule", url.Values{"op": {"refresh"}, "district": {"Central"}, "branches.2000000000": {"NBC Diriyah"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	store := new(MockStore)
	store.On("GetSubmissions", mock.Anything).Return([]model.FormSubmission{
		{ID: "1", Category: model.ReportProblem, Timestamp: "2024-05-01T06:30:15.250Z", BranchName: "NBC Jubail", Employees: []model.EmployeeEntry{}},
		{ID: "2", Category: model.BranchVisit, Timestamp: "2024-05-02T06:30:15.250Z", BranchName: "NBC Abha", Employees: []model.EmployeeEntry{}},
	}, nil)
	store.On("GetSchedules", mock.Anything).Return([]model.ScheduleEntry{
		{ID: "s1", Date: "2024-05-03", AssignTo: "TC-Elmer", Branches: []string{"NBC Diriyah"}},
	}, nil)

	srv := newServer(t, store, config.TransportMock)
	c := signIn(t, srv)

	_, body := get(t, c, srv.URL+"/dashboard?tab=report-problem")
	assert.Contains(t, body, "NBC Jubail")
	assert.NotContains(t, body, "NBC Abha")
	assert.Contains(t, body, "2024-05-01")

	_, body = get(t, c, srv.URL+"/dashboard?tab=schedule")
	assert.Contains(t, body, "TC-Elmer")
	assert.Contains(t, body, "NBC Diriyah")

	_, body = get(t, c, srv.URL+"/dashboard?tab=branch-visit&q=jubail")
	assert.Contains(t, body, "No Branch Visit data found.")

	resp, _ := get(t, c, srv.URL+"/dashboard?tab=nope")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestDashboardBackendDown(t *testing.T) {
	store := new(MockStore)
	store.On("GetSubmissions", mock.Anything).Return(nil, errors.New("offline"))

	srv := newServer(t, store, config.TransportMock)
	c := signIn(t, srv)

	resp, body := get(t, c, srv.URL+"/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No Branch Visit data found.")
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func apiLogin(t *testing.T, srv *httptest.Server) tokens {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth("ali", "pw")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tk tokens
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &tk))
	require.NotEmpty(t, tk.AccessToken)
	require.NotEmpty(t, tk.RefreshToken)
	return tk
}

func apiDo(t *testing.T, method, u, token string, body any) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, u, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func TestAPILogin(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)

	resp, err := http.Post(srv.URL+"/api/login", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tk := apiLogin(t, srv)
	assert.Equal(t, 3600, tk.ExpiresIn)

	resp, _ = apiDo(t, http.MethodGet, srv.URL+"/api/reference", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := apiDo(t, http.MethodGet, srv.URL+"/api/reference", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ref Reference
	require.NoError(t, json.Unmarshal([]byte(body), &ref))
	assert.Equal(t, "Eastern", ref.AreaManagers["Yousef Saleh"])
	assert.Contains(t, ref.Districts["Central"], "NBC Diriyah")
	assert.Contains(t, ref.Coordinators, "TC-Sufyan")
}

func TestAPIRefresh(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	tk := apiLogin(t, srv)

	refresh := func() *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/refresh", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Refresh "+tk.RefreshToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := refresh()
	var next tokens
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &next))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, next.AccessToken)

	// refresh tokens are single use
	resp = refresh()
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Post(srv.URL+"/api/refresh", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIReferenceLookups(t *testing.T) {
	srv := newServer(t, new(MockStore), config.TransportMock)
	token := apiLogin(t, srv).AccessToken

	resp, body := apiDo(t, http.MethodGet, srv.URL+"/api/categories/employee-evaluation/questions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var qs []model.Question
	require.NoError(t, json.Unmarshal([]byte(body), &qs))
	require.Len(t, qs, 3)
	assert.Equal(t, "ee1", qs[0].ID)

	resp, _ = apiDo(t, http.MethodGet, srv.URL+"/api/categories/schedule/questions", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = apiDo(t, http.MethodGet, srv.URL+"/api/area-managers/Yousef%20Saleh/district", token, nil)
	assert.JSONEq(t, `{"areaManager":"Yousef Saleh","district":"Eastern"}`, body)

	_, body = apiDo(t, http.MethodGet, srv.URL+"/api/area-managers/Nobody/district", token, nil)
	assert.JSONEq(t, `{"areaManager":"Nobody","district":""}`, body)

	_, body = apiDo(t, http.MethodGet, srv.URL+"/api/districts/Southern/branches", token, nil)
	assert.JSONEq(t, `["NBC Abha","NBC Khamis Mushait"]`, body)

	_, body = apiDo(t, http.MethodGet, srv.URL+"/api/districts/Nowhere/branches", token, nil)
	assert.JSONEq(t, `[]`, body)
}

func TestAPICreateSubmission(t *testing.T) {
	store := new(MockStore)
	var got model.FormSubmission
	store.On("SaveSubmission", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(model.FormSubmission) }).
		Return(nil).Once()

	srv := newServer(t, store, config.TransportMock)
	token := apiLogin(t, srv).AccessToken

	in := map[string]any{
		"category":    "Report Problem",
		"branchName":  "NBC Abha",
		"supervisor":  "Omar Hassan",
		"areaManager": "Noura Ahmad",
		"teamLeader":  "TL-02 Laila",
		"employees":   []map[string]string{{"id": "", "name": ""}},
		"responses":   map[string]any{"rp1": "High", "rp2": "Leaking roof"},
	}
	resp, body := apiDo(t, http.MethodPost, srv.URL+"/api/submissions", token, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	var sub model.FormSubmission
	require.NoError(t, json.Unmarshal([]byte(body), &sub))
	assert.Equal(t, got.ID, sub.ID)
	assert.Equal(t, "Southern", got.District)
	assert.Equal(t, []model.EmployeeEntry{}, got.Employees)
	assert.Equal(t, model.Single("High"), got.Responses["rp1"])

	in["responses"] = map[string]any{"rp1": "Catastrophic"}
	resp, _ = apiDo(t, http.MethodPost, srv.URL+"/api/submissions", token, in)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	in["responses"] = map[string]any{}
	in["category"] = "Schedule"
	resp, _ = apiDo(t, http.MethodPost, srv.URL+"/api/submissions", token, in)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	store.AssertExpectations(t)
}

func TestAPICreateSubmissionBackendDown(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSubmission", mock.Anything, mock.Anything).Return(errors.New("offline"))

	srv := newServer(t, store, config.TransportMock)
	token := apiLogin(t, srv).AccessToken

	resp, _ := apiDo(t, http.MethodPost, srv.URL+"/api/submissions", token, map[string]any{
		"category":    "Branch Visit",
		"branchName":  "NBC Abha",
		"supervisor":  "Omar Hassan",
		"areaManager": "Noura Ahmad",
		"teamLeader":  "TL-02 Laila",
		"responses":   map[string]any{"bv4": []string{"Ironed", "Clean"}},
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAPICreateSchedule(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSchedule", mock.Anything, mock.Anything).Return(nil).Once()

	srv := newServer(t, store, config.TransportMock)
	token := apiLogin(t, srv).AccessToken

	in := map[string]any{
		"date":          "2024-05-03",
		"assignTo":      "TC-Elmer",
		"accompaniedBy": "FTS-Mohammad Ali Mubarak",
		"district":      "Central",
		"branches":      []string{"NBC Diriyah", "", "NBC Diriyah"},
		"purpose":       "Training",
	}
	resp, body := apiDo(t, http.MethodPost, srv.URL+"/api/schedules", token, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	var sch model.ScheduleEntry
	require.NoError(t, json.Unmarshal([]byte(body), &sch))
	assert.Equal(t, []string{"NBC Diriyah", "NBC Diriyah"}, sch.Branches)
	assert.Equal(t, form.ApprovedBy, sch.ApprovedBy)

	in["branches"] = []string{"NBC Jubail"}
	resp, _ = apiDo(t, http.MethodPost, srv.URL+"/api/schedules", token, in)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	store.AssertExpectations(t)
}

func TestAPIHistory(t *testing.T) {
	store := new(MockStore)
	store.On("GetSubmissions", mock.Anything).Return([]model.FormSubmission{
		{ID: "1", Category: model.EmployeeEvaluation, BranchName: "NBC Jubail"},
	}, nil)
	store.On("GetSchedules", mock.Anything).Return([]model.ScheduleEntry{}, nil)

	srv := newServer(t, store, config.TransportMock)
	token := apiLogin(t, srv).AccessToken

	resp, body := apiDo(t, http.MethodGet, srv.URL+"/api/history?tab=employee-evaluation", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &h))
	assert.Equal(t, model.EmployeeEvaluation, h.Table.Tab)
	require.Len(t, h.Table.Submissions, 1)
	assert.Equal(t, 1, h.Summary.Submissions)

	resp, _ = apiDo(t, http.MethodGet, srv.URL+"/api/history?tab=nope", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
