package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

func TestNoopRouterReturnsNoRoutes(t *testing.T) {
	r := NewNoopRouter()

	got, err := r.WalkingEstimates(context.Background(), entity.GeoPoint{Lat: 33.77, Lng: -84.39}, []Target{
		{ID: "1", Lat: 33.78, Lng: -84.40},
	})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPRouterBatchedCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var in struct {
			Origin  entity.GeoPoint `json:"origin"`
			Targets []Target        `json:"targets"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Len(t, in.Targets, 2)

		json.NewEncoder(w).Encode(map[string]any{
			"estimates": map[string]entity.WalkEstimate{
				"1": {Minutes: 4, Meters: 320},
			},
		})
	}))
	defer srv.Close()

	r := NewHTTPRouter(srv.URL, time.Second)
	got, err := r.WalkingEstimates(context.Background(), entity.GeoPoint{Lat: 33.77, Lng: -84.39}, []Target{
		{ID: "1", Lat: 33.78, Lng: -84.40},
		{ID: "2", Lat: 33.79, Lng: -84.41},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "one batched call per query, not per event")
	assert.Equal(t, entity.WalkEstimate{Minutes: 4, Meters: 320}, got["1"])
	_, ok := got["2"]
	assert.False(t, ok, "unresolvable targets are simply absent")
}

func TestHTTPRouterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPRouter(srv.URL, time.Second)
	_, err := r.WalkingEstimates(context.Background(), entity.GeoPoint{}, []Target{{ID: "1"}})
	assert.ErrorIs(t, err, entity.ErrRoutingUnavailable)
}

func TestHTTPRouterTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	r := NewHTTPRouter(srv.URL, 20*time.Millisecond)
	_, err := r.WalkingEstimates(context.Background(), entity.GeoPoint{}, []Target{{ID: "1"}})
	assert.ErrorIs(t, err, entity.ErrRoutingUnavailable)
}

func TestNewFromConfig(t *testing.T) {
	r := NewFromConfig(config.RoutingConfig{})
	_, ok := r.(noopRouter)
	assert.True(t, ok, "no URL configured means the noop stub")

	r = NewFromConfig(config.RoutingConfig{URL: "http://localhost:9999/route"})
	_, ok = r.(*httpRouter)
	assert.True(t, ok)
}
