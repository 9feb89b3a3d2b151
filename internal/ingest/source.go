package ingest

import (
	"context"
	"fmt"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

// Source is one ingestion strategy. Both strategies produce the same raw
// record shape; the normalizer and driver are strategy-agnostic.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]entity.RawRecord, error)
}

func NewFromConfig(cfg config.IngestConfig) (Source, error) {
	switch cfg.Strategy {
	case "api":
		return NewEngageSource(cfg), nil
	case "crawl":
		var fetcher PageFetcher
		if cfg.Crawl.Rendered {
			fetcher = NewRenderedFetcher(cfg.Crawl.RenderTimeout)
		} else {
			fetcher = NewHTTPFetcher(cfg.Timeout, cfg.UserAgent)
		}
		return NewCrawlSource(cfg, fetcher), nil
	default:
		return nil, fmt.Errorf("unknown ingest strategy: %s", cfg.Strategy)
	}
}
