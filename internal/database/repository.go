package database

import (
	"context"
	"fmt"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

// SnapshotRepository holds the single current batch. Write replaces the
// snapshot atomically with respect to Read; Read on an empty store returns
// an empty batch, never an error.
type SnapshotRepository interface {
	Write(ctx context.Context, batch entity.Batch) error
	Read(ctx context.Context) (entity.Batch, error)
}

func NewSnapshotRepository(cfg config.StoreConfig) (SnapshotRepository, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileSnapshotRepository(cfg.Path), nil
	case "redis":
		return NewRedisSnapshotRepository(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
