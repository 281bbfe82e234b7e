// Package session keeps who is logged in on a device and which backend the
// device talks to.
package session

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/model"
)

const (
	KeyUser     = "user session"
	KeyEndpoint = "backend endpoint"

	EndpointPrefix = "https://script.google.com"
	DefaultRole    = "Training Coordinator"
)

var (
	ErrInvalidEndpoint    = errors.New("please enter a valid Google Apps Script Web App URL")
	ErrMissingCredentials = errors.New("username and password are required")
)

// Session is the per-device application context. It is loaded from the
// store at the start of each request and changed only by Login, Logout and
// Configure.
type Session struct {
	ClientID string
	User     *model.User
	Endpoint string

	needsEndpoint bool
}

func (s *Session) LoggedIn() bool {
	return s.User != nil
}

// Configured reports whether the device may proceed past the setup screen.
func (s *Session) Configured() bool {
	return !s.needsEndpoint || s.Endpoint != ""
}

type Manager struct {
	store           *Store
	needsEndpoint   bool
	defaultEndpoint string
}

// NewManager creates a Manager. When needsEndpoint is set, devices without a
// stored endpoint fall back to defaultEndpoint, or to the setup screen if
// that is empty.
func NewManager(store *Store, needsEndpoint bool, defaultEndpoint string) *Manager {
	return &Manager{store, needsEndpoint, defaultEndpoint}
}

func (m *Manager) Load(ctx context.Context, clientID string) (*Session, error) {
	s := &Session{ClientID: clientID, needsEndpoint: m.needsEndpoint}

	raw, ok, err := m.store.Get(ctx, clientID, KeyUser)
	if err != nil {
		return nil, err
	}
	if ok {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Username == "" {
			log.WithFields(log.Fields{"client": clientID}).Warn("session: discarding unreadable user session")
		} else {
			s.User = &u
		}
	}

	if m.needsEndpoint {
		endpoint, ok, err := m.store.Get(ctx, clientID, KeyEndpoint)
		if err != nil {
			return nil, err
		}
		if !ok {
			endpoint = m.defaultEndpoint
		}
		s.Endpoint = endpoint
	}
	return s, nil
}

// NewUser builds the profile shown in the header for username.
func NewUser(username string) model.User {
	return model.User{
		Username: username,
		Role:     DefaultRole,
		Avatar:   "https://ui-avatars.com/api/?name=" + url.QueryEscape(username) + "&background=FF8C00&color=fff",
	}
}

// Login accepts any non-empty username and password.
func (m *Manager) Login(ctx context.Context, s *Session, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	u := NewUser(username)
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, s.ClientID, KeyUser, string(data)); err != nil {
		return err
	}
	s.User = &u
	log.WithFields(log.Fields{"client": s.ClientID, "user": username}).Info("session: logged in")
	return nil
}

func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if err := m.store.Delete(ctx, s.ClientID, KeyUser); err != nil {
		return err
	}
	s.User = nil
	return nil
}

// Configure stores the backend endpoint of the device.
func (m *Manager) Configure(ctx context.Context, s *Session, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if err := ValidateEndpoint(endpoint); err != nil {
		return err
	}
	if err := m.store.Set(ctx, s.ClientID, KeyEndpoint, endpoint); err != nil {
		return err
	}
	s.Endpoint = endpoint
	return nil
}

func ValidateEndpoint(endpoint string) error {
	if !strings.HasPrefix(endpoint, EndpointPrefix) {
		return ErrInvalidEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return ErrInvalidEndpoint
	}
	return nil
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by NewContext, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
