package remote

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/branch-portal/model"
)

// Bridge invokes a named procedure of the script host with positional
// arguments and returns its JSON result.
type Bridge interface {
	Call(ctx context.Context, function string, args ...any) (json.RawMessage, error)
}

// BridgeStore routes the store operations through a Bridge.
type BridgeStore struct {
	bridge Bridge
}

// NewBridgeStore uses a MockBridge when bridge is nil, so the portal can be
// exercised without a live backend.
func NewBridgeStore(bridge Bridge) *BridgeStore {
	if bridge == nil {
		bridge = &MockBridge{Delay: DefaultMockDelay}
	}
	return &BridgeStore{bridge}
}

func (s *BridgeStore) SaveSubmission(ctx context.Context, sub model.FormSubmission) error {
	_, err := s.bridge.Call(ctx, ActionSaveSubmission, sub)
	return err
}

func (s *BridgeStore) SaveSchedule(ctx context.Context, sch model.ScheduleEntry) error {
	_, err := s.bridge.Call(ctx, ActionSaveSchedule, sch)
	return err
}

func (s *BridgeStore) GetSubmissions(ctx context.Context) ([]model.FormSubmission, error) {
	data, err := s.portalData(ctx)
	if err != nil {
		return nil, err
	}
	return decodeSubmissions(data), nil
}

func (s *BridgeStore) GetSchedules(ctx context.Context) ([]model.ScheduleEntry, error) {
	data, err := s.portalData(ctx)
	if err != nil {
		return nil, err
	}
	return decodeSchedules(data), nil
}

func (s *BridgeStore) portalData(ctx context.Context) (*PortalData, error) {
	raw, err := s.bridge.Call(ctx, ActionGetPortalData)
	if err != nil {
		return nil, err
	}
	data := &PortalData{}
	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, errors.Wrap(err, "getPortalData: decode")
	}
	return data, nil
}

const DefaultMockDelay = 800 * time.Millisecond

// MockBridge answers every call after Delay: reads get empty data sets and
// writes always succeed.
type MockBridge struct {
	Delay time.Duration
}

func (m *MockBridge) Call(ctx context.Context, function string, args ...any) (json.RawMessage, error) {
	select {
	case <-time.After(m.Delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if function == ActionGetPortalData {
		return json.RawMessage(`{"submissions":[],"schedules":[]}`), nil
	}
	return json.RawMessage(`{"success":true}`), nil
}

// ScriptBridge calls functions of a deployed script through its execution
// endpoint: POST {"function", "parameters"}, answered with either
// {"response":{"result":...}} or {"error":{...}}.
type ScriptBridge struct {
	url    string
	token  string
	client *http.Client
}

func NewScriptBridge(url, token string, client *http.Client) *ScriptBridge {
	if client == nil {
		client = http.DefaultClient
	}
	return &ScriptBridge{url, token, client}
}

type scriptRequest struct {
	Function   string `json:"function"`
	Parameters []any  `json:"parameters"`
}

type scriptResponse struct {
	Response *struct {
		Result json.RawMessage `json:"result"`
	} `json:"response"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b *ScriptBridge) Call(ctx context.Context, function string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(scriptRequest{function, args})
	if err != nil {
		return nil, errors.Wrap(err, function+": encode")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, function+": request")
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, function+": send")
	}
	defer resp.Body.Close()

	var out scriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "%s: decode (status %d)", function, resp.StatusCode)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("%s: script error %d: %s", function, out.Error.Code, out.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %s", function, resp.Status)
	}
	if out.Response == nil {
		return nil, nil
	}
	return out.Response.Result, nil
}
