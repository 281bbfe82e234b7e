package httpx

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/oauth"
	"github.com/robfig/cron/v3"

	"github.com/mbolis/branch-portal/config"
	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/session"
)

// RefreshTTL is how long a refresh token stays usable.
const RefreshTTL = 30 * 24 * time.Hour

// Claim names carried in access tokens.
const (
	ClaimUsername = "username"
	ClaimRole     = "role"
)

type credentialsVerifier struct {
	db *sql.DB
}

func CredentialsVerifier(db *sql.DB) oauth.CredentialsVerifier {
	return &credentialsVerifier{db}
}

// NewBearerServer issues the access and refresh tokens of the JSON API.
func NewBearerServer(db *sql.DB, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(db), nil)
}

// The portal has no user directory: any non-empty pair is accepted, as on
// the login screen.
func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return session.ErrMissingCredentials
	}
	return nil
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	_, err := cs.db.Exec(
		"INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)",
		credential,
		tokenID,
		refreshTokenID,
		time.Now().Add(RefreshTTL).Unix(),
	)
	return err
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	var expiration int64
	var ok bool

	// expiration is stored in unix seconds
	cs.db.
		QueryRow(`
			DELETE FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?
			RETURNING expiration, 1`,
			credential,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration, &ok)
	if !ok {
		return errors.New("could not refresh")
	}

	if expiration < time.Now().Unix() {
		return errors.New("could not refresh")
	}
	return nil
}
func (*credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{
		ClaimUsername: credential,
		ClaimRole:     session.DefaultRole,
	}, nil
}
func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}

// SweepTokens deletes refresh tokens past their expiration.
func SweepTokens(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM token WHERE expiration < ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ScheduleTokenSweep runs SweepTokens on the cron spec. The returned
// scheduler is already started.
func ScheduleTokenSweep(db *sql.DB, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := SweepTokens(db)
		if err != nil {
			log.Errorf("token.sweep: %s", err)
			return
		}
		log.Debugf("token.sweep: %d expired tokens removed", n)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
