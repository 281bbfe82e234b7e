package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/gofrs/uuid"

	"github.com/mbolis/branch-portal/httpx"
	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/remote"
	"github.com/mbolis/branch-portal/session"
)

// ClientCookie names the cookie identifying a device.
const ClientCookie = "portal_client"

const clientCookieAge = 10 * 365 * 24 * time.Hour

// Device identifies the calling device by its client cookie, issuing one on
// first contact, and attaches its session to the request context.
func Device(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ""
			if c, err := r.Cookie(ClientCookie); err == nil {
				if id, err := uuid.FromString(c.Value); err == nil {
					clientID = id.String()
				}
			}
			if clientID == "" {
				id, err := uuid.NewV4()
				if err != nil {
					httpx.LogInternalError(w, "device.new_id", err)
					return
				}
				clientID = id.String()
				http.SetCookie(w, &http.Cookie{
					Path:     "/",
					Name:     ClientCookie,
					Value:    clientID,
					MaxAge:   int(clientCookieAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				log.Debugf("device: new client %s", clientID)
			}

			s, err := sessions.Load(r.Context(), clientID)
			if err != nil {
				httpx.LogInternalError(w, "device.session.load", err)
				return
			}

			ctx := session.NewContext(r.Context(), s)
			if s.Endpoint != "" {
				ctx = remote.WithEndpoint(ctx, s.Endpoint)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Gate serves setup until the device has a backend, then login until a user
// is signed in. Only then does the request reach next.
func Gate(setup, login http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			switch {
			case s == nil:
				httpx.LogStatus(w, http.StatusInternalServerError, log.ErrorLevel, "gate.no_session")
			case !s.Configured():
				setup.ServeHTTP(w, r)
			case !s.LoggedIn():
				login.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// Bearer checks the OAuth access token of an API call, which must name a
// user.
func Bearer(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), requireUser).Handler(next)
	}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
		if claims[httpx.ClaimUsername] == "" {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Username returns the user named by the access token of an API call.
func Username(r *http.Request) string {
	claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	return claims[httpx.ClaimUsername]
}
