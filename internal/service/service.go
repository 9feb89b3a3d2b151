package service

import (
	"context"
	"time"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

// QueryRequest carries the raw caller-supplied query parameters. Start, End
// and Date are unvalidated strings; malformed values fall back to the
// configured defaults rather than failing the query.
type QueryRequest struct {
	Start  string
	End    string
	Date   string
	Origin *entity.GeoPoint
}

// QueryResult is the ordered event list plus the snapshot freshness
// timestamp (nil before the first successful ingestion).
type QueryResult struct {
	Events      []entity.RankedEvent `json:"events"`
	LastUpdated *time.Time           `json:"last_updated"`
}

// RefreshResult reports one ingestion run.
type RefreshResult struct {
	Success bool   `json:"success"`
	RunID   string `json:"run_id"`
	Events  int    `json:"events"`
	Message string `json:"message,omitempty"`
}

type EventService interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)
	Refresh(ctx context.Context) (*RefreshResult, error)
}
