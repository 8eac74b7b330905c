// Package session hands out the pseudo-anonymous per-user session tag used
// to correlate events without exposing real identity.
package session

import (
	"context"
	"log/slog"
	"sync"

	"portfolio-analytics/internal/domain"
	"portfolio-analytics/internal/repository"
)

// Provider returns the durable session tag, creating one on first use.
// The tag outlives any single process: it is stored in its own slot and
// only goes away when the store is explicitly cleared.
type Provider struct {
	repo   repository.SessionRepository
	logger *slog.Logger

	mu     sync.Mutex
	cached string
}

// NewProvider creates a session tag provider backed by the given repository
func NewProvider(repo repository.SessionRepository, logger *slog.Logger) *Provider {
	return &Provider{repo: repo, logger: logger}
}

// Tag returns the session tag, never an error. When the durable slot is
// unreadable or unwritable it degrades to a freshly generated in-memory
// tag for this call only - the next call retries storage.
func (p *Provider) Tag(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached
	}

	tag, err := p.repo.Load(ctx)
	if err != nil {
		p.logger.Warn("Failed to load session tag", "error", err)
	}

	if tag != "" {
		p.cached = tag
		return tag
	}

	tag = newSessionTag()
	if err := p.repo.Save(ctx, tag); err != nil {
		p.logger.Warn("Failed to persist session tag", "error", err)
		// Ephemeral tag: not cached, so a later call gets another chance
		// to create a durable one
		return tag
	}

	p.cached = tag
	return tag
}

// Reset forgets the current tag and removes it from storage. The next Tag
// call generates a fresh one.
func (p *Provider) Reset(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cached = ""
	if err := p.repo.Clear(ctx); err != nil {
		p.logger.Warn("Failed to clear session tag", "error", err)
	}
}

// newSessionTag concatenates two random base-36 fragments. Enough entropy
// to avoid collisions across a small user base; cryptographic strength is
// not required since this is not a security boundary.
func newSessionTag() string {
	return domain.RandomBase36(13) + domain.RandomBase36(13)
}
