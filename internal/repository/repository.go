package repository

import (
	"context"

	"portfolio-analytics/internal/domain"
)

// StoreRepository abstracts the durable slot the analytics store is
// persisted to. The slot holds one serialized blob; writes are whole-value
// overwrites, never partial field updates. Keeping this behind an interface
// lets tests swap in an in-memory implementation.
type StoreRepository interface {
	// Load reads and parses the persisted blob.
	// Returns (nil, nil) when no blob exists yet, and (nil, err) when the
	// blob is unreadable or corrupt - callers treat both as "start empty".
	// Timestamps come back as real time.Time values, never strings.
	Load(ctx context.Context) (*domain.AnalyticsData, error)

	// Save serializes the full store and overwrites the durable slot.
	// Callers must not assume the write succeeds; a failed save degrades
	// to a warning and the in-memory state stays authoritative.
	Save(ctx context.Context, data *domain.AnalyticsData) error
}

// SessionRepository abstracts the separate slot holding the per-user
// session tag as a bare string.
type SessionRepository interface {
	// Load returns the stored tag, or "" when none exists.
	Load(ctx context.Context) (string, error)

	// Save stores the tag, overwriting any previous value.
	Save(ctx context.Context, tag string) error

	// Clear removes the stored tag. Clearing an absent tag is not an error.
	Clear(ctx context.Context) error
}
