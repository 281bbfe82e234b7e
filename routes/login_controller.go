package routes

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mbolis/branch-portal/app"
	"github.com/mbolis/branch-portal/httpx"
	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/session"
	"github.com/mbolis/branch-portal/web"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

// Login exchanges basic auth credentials for an access and a refresh token.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

// Refresh trades the refresh token in "Authorization: Refresh <token>" for
// a new token pair.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		}
		req, err := http.NewRequestWithContext(r.Context(), "POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogInternalError(w, "refresh.new_request", err)
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		if resp.Status() != http.StatusOK {
			log.Debugf("refresh.grant: status %d", resp.Status())
		}
		if err := resp.Flush(w); err != nil {
			log.Debugf("refresh.flush: %s", err)
		}
	}
}

// SetupScreen is shown to devices without a backend endpoint.
func SetupScreen(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderSetup(app, w, http.StatusOK, "", "")
	}
}

// LoginScreen is shown to configured devices with nobody signed in.
func LoginScreen(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderLogin(app, w, http.StatusOK, "", "")
	}
}

type setupFields struct {
	Endpoint string `form:"endpoint"`
}

// Setup stores the backend endpoint of the device.
func Setup(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())

		var in setupFields
		if err := httpx.DecodeForm(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "setup.parse_form")
			return
		}

		err := app.Sessions.Configure(r.Context(), s, in.Endpoint)
		if errors.Is(err, session.ErrInvalidEndpoint) {
			log.Debugf("setup.endpoint: %s", err)
			renderSetup(app, w, http.StatusBadRequest, in.Endpoint, "Please enter a valid Google Apps Script Web App URL.")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "setup.configure", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type loginFields struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// SignIn opens a user session on the device.
func SignIn(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if !s.Configured() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		var in loginFields
		if err := httpx.DecodeForm(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "login.parse_form")
			return
		}

		err := app.Sessions.Login(r.Context(), s, in.Username, in.Password)
		if errors.Is(err, session.ErrMissingCredentials) {
			renderLogin(app, w, http.StatusBadRequest, in.Username, "Please enter both username and password.")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "login.session", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// SignOut closes the user session; the backend endpoint is kept.
func SignOut(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if err := app.Sessions.Logout(r.Context(), s); err != nil {
			httpx.LogInternalError(w, "logout.session", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func renderSetup(app app.App, w http.ResponseWriter, status int, endpoint, alert string) {
	page := web.NewPage("Connect Backend", nil)
	page.Alert = alert
	renderPage(app, w, status, "setup", web.SetupPage{Page: page, Endpoint: endpoint})
}

func renderLogin(app app.App, w http.ResponseWriter, status int, username, alert string) {
	page := web.NewPage("Login", nil)
	page.Alert = alert
	renderPage(app, w, status, "login", web.LoginPage{Page: page, Username: username})
}

func renderPage(app app.App, w http.ResponseWriter, status int, name string, data any) {
	if err := app.Pages.Render(w, status, name, data); err != nil {
		httpx.LogInternalError(w, "render."+name, err)
	}
}
