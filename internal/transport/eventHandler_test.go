package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/service"
)

type stubService struct {
	lastQuery  service.QueryRequest
	refreshErr error
}

func (s *stubService) Query(ctx context.Context, req service.QueryRequest) (*service.QueryResult, error) {
	s.lastQuery = req
	return &service.QueryResult{Events: []entity.RankedEvent{}}, nil
}

func (s *stubService) Refresh(ctx context.Context) (*service.RefreshResult, error) {
	if s.refreshErr != nil {
		return &service.RefreshResult{Success: false, Message: s.refreshErr.Error()}, s.refreshErr
	}
	return &service.RefreshResult{Success: true, RunID: "run-1", Events: 2}, nil
}

func setupRouter(svc service.EventService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return InitRoutes(NewEventHandler(svc))
}

func TestGetEventsPassesWindow(t *testing.T) {
	stub := &stubService{}
	router := setupRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events?start=17:00&end=21:00&date=2026-04-10&lat=33.77&lng=-84.39", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "17:00", stub.lastQuery.Start)
	assert.Equal(t, "21:00", stub.lastQuery.End)
	assert.Equal(t, "2026-04-10", stub.lastQuery.Date)
	require.NotNil(t, stub.lastQuery.Origin)
	assert.Equal(t, 33.77, stub.lastQuery.Origin.Lat)
}

func TestGetEventsIgnoresIncompleteOrigin(t *testing.T) {
	stub := &stubService{}
	router := setupRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events?lat=33.77", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "lat without lng is ignored, not an error")
	assert.Nil(t, stub.lastQuery.Origin)
}

func TestRefreshStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "ok", err: nil, wantStatus: http.StatusOK},
		{name: "already running", err: entity.ErrRefreshInProgress, wantStatus: http.StatusConflict},
		{name: "upstream down", err: entity.ErrUpstreamUnavailable, wantStatus: http.StatusBadGateway},
		{name: "empty run", err: entity.ErrEmptyRun, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&stubService{refreshErr: tt.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.err != nil && tt.err != entity.ErrRefreshInProgress {
				assert.Equal(t, false, body["success"])
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := setupRouter(&stubService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
