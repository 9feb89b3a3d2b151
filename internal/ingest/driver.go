package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/metrics"
)

// Driver orchestrates one ingestion run: fetch raw records from the active
// source, normalize each, deduplicate by id, and produce the batch.
type Driver struct {
	source Source
	norm   *Normalizer
	now    func() time.Time
}

func NewDriver(source Source, norm *Normalizer, now func() time.Time) *Driver {
	if now == nil {
		now = time.Now
	}
	return &Driver{source: source, norm: norm, now: now}
}

// Run returns a complete batch or an error; it never returns a partial
// batch. A record-level failure is skipped; a source-level failure or a run
// yielding zero events aborts so the caller leaves prior data untouched.
func (d *Driver) Run(ctx context.Context) (entity.Batch, error) {
	raw, err := d.source.Fetch(ctx)
	if err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		return entity.Batch{}, fmt.Errorf("fetch via %s source: %w", d.source.Name(), err)
	}

	// Last write wins for duplicate ids within a run.
	byID := make(map[string]entity.Event, len(raw))
	for _, rec := range raw {
		ev, err := d.norm.Normalize(rec)
		if err != nil {
			if errors.Is(err, entity.ErrNoUsableID) {
				logrus.Warnf("ingest: skipping record %q: %v", rec.Title, err)
				metrics.RecordsSkipped.WithLabelValues("no_id").Inc()
				continue
			}
			metrics.IngestRuns.WithLabelValues("error").Inc()
			return entity.Batch{}, err
		}
		byID[ev.ID] = ev
	}

	if len(byID) == 0 {
		metrics.IngestRuns.WithLabelValues("empty").Inc()
		return entity.Batch{}, entity.ErrEmptyRun
	}

	events := make([]entity.Event, 0, len(byID))
	for _, ev := range byID {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartsAt.Equal(events[j].StartsAt) {
			return events[i].StartsAt.Before(events[j].StartsAt)
		}
		return events[i].ID < events[j].ID
	})

	metrics.IngestRuns.WithLabelValues("ok").Inc()
	metrics.EventsIngested.Add(float64(len(events)))
	logrus.Infof("ingest: %s run normalized %d events from %d records", d.source.Name(), len(events), len(raw))

	return entity.Batch{LastUpdated: d.now(), Events: events}, nil
}
