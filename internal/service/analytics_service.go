package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"portfolio-analytics/internal/domain"
	"portfolio-analytics/internal/metrics"
	"portfolio-analytics/internal/repository"
)

// SessionProvider supplies the per-user session tag events are correlated
// with. Defined here, on the consumer side, so tests can swap in a fake.
type SessionProvider interface {
	Tag(ctx context.Context) string
	Reset(ctx context.Context)
}

// EnvironmentReader exposes the ambient client metadata captured at call
// time - the collaborator's environment, not ours. The HTTP layer supplies
// an implementation that reads request headers out of the context; tests
// supply a fake.
type EnvironmentReader interface {
	UserAgent(ctx context.Context) string
	Referrer(ctx context.Context) string
}

// AnalyticsService is the one surface collaborators touch: the in-memory
// event store, its persistence, and the query/export/clear API. It is
// constructed exactly once at startup and passed to whoever needs it -
// there is no hidden package-level singleton.
type AnalyticsService struct {
	storeRepo repository.StoreRepository
	session   SessionProvider
	env       EnvironmentReader
	logger    *slog.Logger

	// now is swappable so tests can pin the clock
	now func() time.Time

	mu   sync.Mutex
	data *domain.AnalyticsData
}

// NewAnalyticsService seeds the store from the durable slot (or starts
// empty when nothing parseable is there) and records the first-touch view
// event. Page views are tracked only here, never through an exposed
// operation: re-triggering one per collaborator call would double-count.
func NewAnalyticsService(ctx context.Context, storeRepo repository.StoreRepository, session SessionProvider, env EnvironmentReader, logger *slog.Logger) *AnalyticsService {
	s := &AnalyticsService{
		storeRepo: storeRepo,
		session:   session,
		env:       env,
		logger:    logger,
		now:       time.Now,
		data:      domain.NewAnalyticsData(),
	}

	data, err := storeRepo.Load(ctx)
	if err != nil {
		// Corrupt blob: the whole history is abandoned, not salvaged
		logger.Warn("Failed to load analytics data, starting empty", "error", err)
	}
	if data != nil {
		s.data = data
	}

	s.record(ctx, domain.KindView)

	return s
}

// TrackResumeDownload records a resume download event
func (s *AnalyticsService) TrackResumeDownload(ctx context.Context) {
	s.record(ctx, domain.KindDownload)
}

// TrackContactInteraction records a contact form interaction event
func (s *AnalyticsService) TrackContactInteraction(ctx context.Context) {
	s.record(ctx, domain.KindContact)
}

// record appends an event of the given kind and persists the store.
// Append and counter bump happen under one lock acquisition, so no caller
// ever observes a half-updated store. A failed save is logged and
// swallowed: analytics must never break the site, and the in-memory state
// stays authoritative until durability comes back.
func (s *AnalyticsService) record(ctx context.Context, kind domain.EventKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := domain.NewEvent(
		kind,
		s.now(),
		s.env.UserAgent(ctx),
		s.env.Referrer(ctx),
		s.session.Tag(ctx),
	)

	s.data.Append(event)
	metrics.RecordEvent(string(kind))

	s.persistLocked(ctx)
}

// persistLocked writes the current state to the durable slot.
// Callers must hold s.mu.
func (s *AnalyticsService) persistLocked(ctx context.Context) {
	if err := s.storeRepo.Save(ctx, s.data); err != nil {
		s.logger.Warn("Failed to save analytics data", "error", err)
		metrics.RecordPersistFailure()
		return
	}
	metrics.SetStoredEvents(len(s.data.Events))
}

// Snapshot returns a copy of the current state. Mutating the returned
// value never affects the store.
func (s *AnalyticsService) Snapshot() *domain.AnalyticsData {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.Copy()
}

// Summary aggregates the event list into the four dashboard buckets,
// relative to the current clock. Safe to call frequently: it is a pure
// read, recomputed from the event list every time.
func (s *AnalyticsService) Summary() domain.Summary {
	return s.SummaryAt(s.now())
}

// SummaryAt is Summary with an explicit reference time
func (s *AnalyticsService) SummaryAt(now time.Time) domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return summarize(s.data, now)
}

// RecentEvents returns up to limit events, most recent first. A limit of
// zero or less yields an empty slice; a limit beyond the stored count
// returns everything.
func (s *AnalyticsService) RecentEvents(limit int) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	return recentEvents(s.data, limit)
}

// Export returns the full store as pretty-printed JSON, suitable for a
// user-triggered file download
func (s *AnalyticsService) Export() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		// Plain structs of strings, ints and times cannot fail to marshal;
		// degrade to an empty document rather than propagate
		s.logger.Warn("Failed to export analytics data", "error", err)
		return "{}"
	}
	return string(raw)
}

// Clear resets the store to empty, persists the empty state and discards
// the session tag so the next event starts a fresh session
func (s *AnalyticsService) Clear(ctx context.Context) {
	s.mu.Lock()
	s.data = domain.NewAnalyticsData()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.session.Reset(ctx)
	metrics.RecordStoreClear()
}

// ReloadFromStorage replaces the in-memory state wholesale with whatever
// the durable slot currently holds. Another process's write is the new
// truth - nothing is merged. Wired to the storage watcher.
//
// The load runs under the store lock so a tracking call cannot land
// between reading the slot and replacing the state, which would silently
// drop its event. A notification caused by this process's own save loads
// back the history already held and is left in place: only changes from
// another process count as reloads.
func (s *AnalyticsService) ReloadFromStorage(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storeRepo.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to reload analytics data", "error", err)
	}
	if data == nil {
		data = domain.NewAnalyticsData()
	}

	if s.data.SameHistory(data) {
		return
	}

	s.data = data
	metrics.RecordExternalReload()
	metrics.SetStoredEvents(len(data.Events))
}
