package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"portfolio-analytics/internal/repository"
)

// sessionRepository stores the session tag as a bare string in its own
// file, deliberately kept separate from the analytics blob so clearing one
// cannot corrupt the other
type sessionRepository struct {
	path string
}

// NewSessionRepository creates a file-backed session tag repository
func NewSessionRepository(path string) repository.SessionRepository {
	return &sessionRepository{path: path}
}

// Load returns the stored tag, or "" when none has been saved yet
func (r *sessionRepository) Load(_ context.Context) (string, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session tag: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save overwrites the stored tag
func (r *sessionRepository) Save(_ context.Context, tag string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(r.path, []byte(tag), 0o600); err != nil {
		return fmt.Errorf("failed to write session tag: %w", err)
	}
	return nil
}

// Clear removes the stored tag; a missing file is not an error
func (r *sessionRepository) Clear(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session tag: %w", err)
	}
	return nil
}
