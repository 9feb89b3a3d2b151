package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

// fileSnapshotRepository persists the batch as one JSON file. Writes go to a
// temp file in the same directory followed by a rename, so a concurrent
// reader sees either the old or the new snapshot, never a mix.
type fileSnapshotRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileSnapshotRepository(path string) SnapshotRepository {
	if path == "" {
		path = "./data/events.json"
	}
	return &fileSnapshotRepository{path: path}
}

func (r *fileSnapshotRepository) Write(ctx context.Context, batch entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".events-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (r *fileSnapshotRepository) Read(ctx context.Context) (entity.Batch, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entity.Batch{Events: []entity.Event{}}, nil
		}
		return entity.Batch{}, err
	}
	var batch entity.Batch
	if err := json.Unmarshal(b, &batch); err != nil {
		return entity.Batch{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if batch.Events == nil {
		batch.Events = []entity.Event{}
	}
	return batch, nil
}
