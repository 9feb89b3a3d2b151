package service

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/database"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/metrics"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/routing"
)

// BatchRunner produces one complete batch per run (the ingestion driver).
type BatchRunner interface {
	Run(ctx context.Context) (entity.Batch, error)
}

type EventServiceConfig struct {
	// Defaults applied when the caller omits or mangles the window.
	QueryStart string
	QueryEnd   string
	Location   *time.Location
	// RoutingTimeout bounds the single batched routing call per query.
	RoutingTimeout time.Duration
}

type EventServiceImpl struct {
	repo    database.SnapshotRepository
	runner  BatchRunner
	router  routing.Router
	config  *EventServiceConfig
	now     func() time.Time
	running int32
}

func NewEventService(repo database.SnapshotRepository, runner BatchRunner, router routing.Router, config *EventServiceConfig) EventService {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.QueryStart == "" {
		config.QueryStart = "18:00"
	}
	if config.QueryEnd == "" {
		config.QueryEnd = "20:00"
	}
	if config.RoutingTimeout == 0 {
		config.RoutingTimeout = 5 * time.Second
	}
	return &EventServiceImpl{
		repo:   repo,
		runner: runner,
		router: router,
		config: config,
		now:    time.Now,
	}
}

// Query filters the current snapshot to events overlapping the requested
// time-of-day window and orders the result. Query never hard-fails on bad
// caller input or a broken routing collaborator; it degrades instead.
func (s *EventServiceImpl) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	batch, err := s.repo.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	metrics.QueriesServed.Inc()

	windowStart, windowEnd := s.window(req)

	matched := make([]entity.Event, 0, len(batch.Events))
	for _, ev := range batch.Events {
		// Inclusive overlap on both ends.
		if !ev.StartsAt.After(windowEnd) && !ev.EndsAt.Before(windowStart) {
			matched = append(matched, ev)
		}
	}

	ranked := s.rank(ctx, matched, req.Origin)

	result := &QueryResult{Events: ranked}
	if !batch.LastUpdated.IsZero() {
		t := batch.LastUpdated
		result.LastUpdated = &t
	}
	return result, nil
}

// rank orders matched events. Without an origin: ascending by start time,
// ties broken by id. With an origin: one batched routing call; events with
// known estimates sort first, ascending by minutes, and events without a
// location or route keep start-time order after them. An unknown estimate is
// never mapped to a sentinel minute value that could sort it as closest.
func (s *EventServiceImpl) rank(ctx context.Context, matched []entity.Event, origin *entity.GeoPoint) []entity.RankedEvent {
	estimates := map[string]entity.WalkEstimate{}
	if origin != nil && len(matched) > 0 {
		targets := make([]routing.Target, 0, len(matched))
		for _, ev := range matched {
			if ev.Location != nil {
				targets = append(targets, routing.Target{ID: ev.ID, Lat: ev.Location.Lat, Lng: ev.Location.Lng})
			}
		}
		if len(targets) > 0 {
			rctx, cancel := context.WithTimeout(ctx, s.config.RoutingTimeout)
			got, err := s.router.WalkingEstimates(rctx, *origin, targets)
			cancel()
			if err != nil {
				logrus.Warnf("query: routing degraded to unknown estimates: %v", err)
			} else {
				estimates = got
			}
		}
	}

	ranked := make([]entity.RankedEvent, 0, len(matched))
	for _, ev := range matched {
		re := entity.RankedEvent{Event: ev}
		if est, ok := estimates[ev.ID]; ok {
			e := est
			re.Walk = &e
		}
		ranked = append(ranked, re)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if origin != nil {
			switch {
			case a.Walk != nil && b.Walk == nil:
				return true
			case a.Walk == nil && b.Walk != nil:
				return false
			case a.Walk != nil && b.Walk != nil:
				if a.Walk.Minutes != b.Walk.Minutes {
					return a.Walk.Minutes < b.Walk.Minutes
				}
				return a.ID < b.ID
			}
		}
		if !a.StartsAt.Equal(b.StartsAt) {
			return a.StartsAt.Before(b.StartsAt)
		}
		return a.ID < b.ID
	})
	return ranked
}

// window anchors the requested time-of-day range to the requested date
// (default today) in the configured location.
func (s *EventServiceImpl) window(req QueryRequest) (time.Time, time.Time) {
	day := s.now().In(s.config.Location)
	if req.Date != "" {
		if d, err := time.ParseInLocation("2006-01-02", req.Date, s.config.Location); err == nil {
			day = d
		} else {
			logrus.Warnf("query: malformed date %q, using today", req.Date)
		}
	}

	sh, sm := s.clock(req.Start, s.config.QueryStart)
	eh, em := s.clock(req.End, s.config.QueryEnd)

	start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, s.config.Location)
	end := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, s.config.Location)
	return start, end
}

// clock parses an HH:MM time of day, falling back to the configured default
// on malformed input.
func (s *EventServiceImpl) clock(raw, def string) (int, int) {
	if raw != "" {
		if t, err := time.Parse("15:04", raw); err == nil {
			return t.Hour(), t.Minute()
		}
		logrus.Warnf("query: malformed window time %q, using default %s", raw, def)
	}
	t, err := time.Parse("15:04", def)
	if err != nil {
		return 18, 0
	}
	return t.Hour(), t.Minute()
}

// Refresh triggers one ingestion run. Concurrent triggers are rejected, not
// interleaved; a failed run leaves the stored snapshot untouched.
func (s *EventServiceImpl) Refresh(ctx context.Context) (*RefreshResult, error) {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return nil, entity.ErrRefreshInProgress
	}
	defer atomic.StoreInt32(&s.running, 0)

	runID := uuid.New().String()
	logrus.Infof("refresh %s: starting ingestion run", runID)

	batch, err := s.runner.Run(ctx)
	if err != nil {
		logrus.Errorf("refresh %s: run failed: %v", runID, err)
		return &RefreshResult{Success: false, RunID: runID, Message: err.Error()}, err
	}

	if err := s.repo.Write(ctx, batch); err != nil {
		logrus.Errorf("refresh %s: persist failed: %v", runID, err)
		return &RefreshResult{Success: false, RunID: runID, Message: err.Error()}, err
	}

	metrics.SnapshotEvents.Set(float64(len(batch.Events)))
	metrics.LastRefresh.Set(float64(batch.LastUpdated.Unix()))
	logrus.Infof("refresh %s: stored %d events", runID, len(batch.Events))

	return &RefreshResult{Success: true, RunID: runID, Events: len(batch.Events)}, nil
}

// IsRefreshing reports whether an ingestion run is currently in flight.
func (s *EventServiceImpl) IsRefreshing() bool {
	return atomic.LoadInt32(&s.running) == 1
}
