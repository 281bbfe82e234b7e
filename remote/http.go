package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/model"
)

// HTTPStore talks to a spreadsheet web app over plain HTTP. Writes are
// reported as successful once the request went out: the web app does not
// give a readable answer to cross-origin posts, so the status is ignored.
type HTTPStore struct {
	endpoint string
	client   *http.Client
}

func NewHTTPStore(endpoint string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{endpoint, client}
}

type actionRequest struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

func (s *HTTPStore) SaveSubmission(ctx context.Context, sub model.FormSubmission) error {
	return s.post(ctx, ActionSaveSubmission, sub)
}

func (s *HTTPStore) SaveSchedule(ctx context.Context, sch model.ScheduleEntry) error {
	return s.post(ctx, ActionSaveSchedule, sch)
}

func (s *HTTPStore) GetSubmissions(ctx context.Context) ([]model.FormSubmission, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return decodeSubmissions(data), nil
}

func (s *HTTPStore) GetSchedules(ctx context.Context) ([]model.ScheduleEntry, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return decodeSchedules(data), nil
}

func (s *HTTPStore) post(ctx context.Context, action string, payload any) error {
	if s.endpoint == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(actionRequest{action, payload})
	if err != nil {
		return errors.Wrap(err, action+": encode")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, action+": request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, action+": send")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	log.Debugf("remote.%s: dispatched (status %d ignored)", action, resp.StatusCode)
	return nil
}

func (s *HTTPStore) fetch(ctx context.Context) (*PortalData, error) {
	if s.endpoint == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "getPortalData: request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "getPortalData: send")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("getPortalData: unexpected status %s", resp.Status)
	}

	data := &PortalData{}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return nil, errors.Wrap(err, "getPortalData: decode")
	}
	return data, nil
}
