package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusgrub_ingest_runs_total",
		Help: "Ingestion runs by result (ok, error, empty).",
	}, []string{"result"})

	EventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusgrub_events_ingested_total",
		Help: "Normalized events produced across all ingestion runs.",
	})

	RecordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusgrub_records_skipped_total",
		Help: "Upstream records dropped during a run, by reason.",
	}, []string{"reason"})

	QueriesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusgrub_queries_total",
		Help: "Event queries served.",
	})

	SnapshotEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campusgrub_snapshot_events",
		Help: "Events in the currently persisted snapshot.",
	})

	LastRefresh = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campusgrub_last_refresh_timestamp_seconds",
		Help: "Unix time of the last successful ingestion run.",
	})
)
