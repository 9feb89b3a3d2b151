// Client for the external walking-distance collaborator.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

// Target is one event venue to estimate a walk to.
type Target struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Router returns walking estimates for a set of targets in one batched call.
// A target absent from the result map has no resolvable route. The provider
// may be entirely unimplemented; callers must degrade gracefully when every
// id is absent.
type Router interface {
	WalkingEstimates(ctx context.Context, origin entity.GeoPoint, targets []Target) (map[string]entity.WalkEstimate, error)
}

func NewFromConfig(cfg config.RoutingConfig) Router {
	if cfg.URL == "" {
		return NewNoopRouter()
	}
	return NewHTTPRouter(cfg.URL, cfg.Timeout)
}

type noopRouter struct{}

// NewNoopRouter returns the stub provider: no route for any id.
func NewNoopRouter() Router { return noopRouter{} }

func (noopRouter) WalkingEstimates(ctx context.Context, origin entity.GeoPoint, targets []Target) (map[string]entity.WalkEstimate, error) {
	return map[string]entity.WalkEstimate{}, nil
}

type httpRouter struct {
	url    string
	client *http.Client
}

// NewHTTPRouter returns a Router that POSTs the origin and target list to an
// external routing service and expects per-id estimates back.
func NewHTTPRouter(url string, timeout time.Duration) Router {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &httpRouter{url: url, client: &http.Client{Timeout: timeout}}
}

func (r *httpRouter) WalkingEstimates(ctx context.Context, origin entity.GeoPoint, targets []Target) (map[string]entity.WalkEstimate, error) {
	payload := struct {
		Origin  entity.GeoPoint `json:"origin"`
		Targets []Target        `json:"targets"`
	}{Origin: origin, Targets: targets}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrRoutingUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: status %d", entity.ErrRoutingUnavailable, resp.StatusCode)
	}

	var out struct {
		Estimates map[string]entity.WalkEstimate `json:"estimates"`
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrRoutingUnavailable, err)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", entity.ErrRoutingUnavailable, err)
	}
	if out.Estimates == nil {
		out.Estimates = map[string]entity.WalkEstimate{}
	}
	return out.Estimates, nil
}
