package remote

import (
	"context"
	"net/http"

	"github.com/mbolis/branch-portal/model"
)

type endpointKey struct{}

// WithEndpoint attaches the backend endpoint of the calling device to ctx.
func WithEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, endpointKey{}, endpoint)
}

// EndpointFrom returns the endpoint attached by WithEndpoint, or "".
func EndpointFrom(ctx context.Context) string {
	endpoint, _ := ctx.Value(endpointKey{}).(string)
	return endpoint
}

// EndpointStore is an HTTPStore whose endpoint is picked per call: the one
// carried by the context, else Default.
type EndpointStore struct {
	Default string
	Client  *http.Client
}

func (s *EndpointStore) store(ctx context.Context) *HTTPStore {
	endpoint := EndpointFrom(ctx)
	if endpoint == "" {
		endpoint = s.Default
	}
	return NewHTTPStore(endpoint, s.Client)
}

func (s *EndpointStore) SaveSubmission(ctx context.Context, sub model.FormSubmission) error {
	return s.store(ctx).SaveSubmission(ctx, sub)
}

func (s *EndpointStore) SaveSchedule(ctx context.Context, sch model.ScheduleEntry) error {
	return s.store(ctx).SaveSchedule(ctx, sch)
}

func (s *EndpointStore) GetSubmissions(ctx context.Context) ([]model.FormSubmission, error) {
	return s.store(ctx).GetSubmissions(ctx)
}

func (s *EndpointStore) GetSchedules(ctx context.Context) ([]model.ScheduleEntry, error) {
	return s.store(ctx).GetSchedules(ctx)
}
