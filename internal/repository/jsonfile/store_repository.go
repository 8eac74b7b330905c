// Package jsonfile persists the analytics store to a single JSON file,
// the Go equivalent of the browser's per-origin storage slot. The whole
// blob is rewritten on every save; there are no partial updates.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"portfolio-analytics/internal/domain"
	"portfolio-analytics/internal/repository"
)

// storeRepository implements repository.StoreRepository on top of one
// JSON file
type storeRepository struct {
	path string
}

// NewStoreRepository creates a file-backed store repository writing to path
func NewStoreRepository(path string) repository.StoreRepository {
	return &storeRepository{path: path}
}

// Load reads and parses the persisted blob. A missing file means no data
// has ever been saved and yields (nil, nil). Any read or parse failure -
// including a single unparseable timestamp - fails the whole load; there
// is no per-event salvage.
func (r *storeRepository) Load(_ context.Context) (*domain.AnalyticsData, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read analytics store: %w", err)
	}

	var data domain.AnalyticsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse analytics store: %w", err)
	}

	// A blob with no event list at all is corrupt, not an empty store.
	// An empty store still carries "events": [].
	if data.Events == nil {
		return nil, fmt.Errorf("failed to parse analytics store: missing events list")
	}

	return &data, nil
}

// Save serializes the full store and overwrites the slot. The write goes
// through a temp file followed by a rename so another process watching the
// slot never observes a half-written blob.
func (r *storeRepository) Save(_ context.Context, data *domain.AnalyticsData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize analytics store: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".analytics-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write analytics store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace analytics store: %w", err)
	}

	return nil
}
