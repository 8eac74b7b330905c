package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-analytics/internal/domain"
	"portfolio-analytics/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== FAKES ====================

// memStoreRepo is a stateful in-memory StoreRepository. It round-trips
// saves through JSON, exactly like the file-backed implementation, so
// serialization behavior is part of what these tests exercise.
type memStoreRepo struct {
	mu      sync.Mutex
	blob    []byte
	saveErr error
	loadErr error
}

func (r *memStoreRepo) Load(_ context.Context) (*domain.AnalyticsData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.blob == nil {
		return nil, nil
	}
	var data domain.AnalyticsData
	if err := json.Unmarshal(r.blob, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (r *memStoreRepo) Save(_ context.Context, data *domain.AnalyticsData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return err
	}
	r.blob = blob
	return nil
}

// gatedStoreRepo blocks one Load until released, so a test can pin the
// interleaving between a reload and a concurrent tracking call
type gatedStoreRepo struct {
	*memStoreRepo
	gate    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (r *gatedStoreRepo) Load(ctx context.Context) (*domain.AnalyticsData, error) {
	if r.gate.CompareAndSwap(true, false) {
		close(r.entered)
		<-r.release
	}
	return r.memStoreRepo.Load(ctx)
}

// fakeSession hands out a fixed tag and remembers resets
type fakeSession struct {
	tag    string
	resets int
}

func (s *fakeSession) Tag(_ context.Context) string { return s.tag }
func (s *fakeSession) Reset(_ context.Context)      { s.resets++ }

// fakeEnv returns fixed ambient client metadata
type fakeEnv struct {
	userAgent string
	referrer  string
}

func (e fakeEnv) UserAgent(_ context.Context) string { return e.userAgent }
func (e fakeEnv) Referrer(_ context.Context) string  { return e.referrer }

func newTestService(t *testing.T, repo *memStoreRepo) (*AnalyticsService, *fakeSession) {
	t.Helper()

	sess := &fakeSession{tag: "test-session-tag"}
	env := fakeEnv{userAgent: "test-agent", referrer: "https://ref.example"}
	svc := NewAnalyticsService(context.Background(), repo, sess, env, slog.New(slog.DiscardHandler))
	return svc, sess
}

// ==================== TESTS ====================

func TestNewAnalyticsService_FirstLoadRecordsOneView(t *testing.T) {
	// Arrange: fresh slot, nothing persisted yet
	repo := &memStoreRepo{}

	// Act
	svc, _ := newTestService(t, repo)

	// Assert: exactly one first-touch view event
	snapshot := svc.Snapshot()
	assert.Equal(t, 1, snapshot.TotalViews)
	assert.Equal(t, 0, snapshot.TotalDownloads)
	assert.Equal(t, 0, snapshot.TotalContacts)
	require.Len(t, snapshot.Events, 1)
	assert.Equal(t, domain.KindView, snapshot.Events[0].Kind)
	assert.Equal(t, "test-agent", snapshot.Events[0].UserAgent)
	assert.Equal(t, "test-session-tag", snapshot.Events[0].SessionTag)
}

func TestNewAnalyticsService_SeedsFromPersistedState(t *testing.T) {
	// Arrange: a previous process left two events behind
	repo := &memStoreRepo{}
	seed := domain.NewAnalyticsData()
	seed.Append(domain.NewEvent(domain.KindView, time.Now(), "", "", ""))
	seed.Append(domain.NewEvent(domain.KindDownload, time.Now(), "", "", ""))
	require.NoError(t, repo.Save(context.Background(), seed))

	// Act: construction adds its own view on top
	svc, _ := newTestService(t, repo)

	// Assert
	snapshot := svc.Snapshot()
	assert.Equal(t, 2, snapshot.TotalViews)
	assert.Equal(t, 1, snapshot.TotalDownloads)
	assert.Len(t, snapshot.Events, 3)
	assert.True(t, snapshot.Consistent())
}

func TestNewAnalyticsService_CorruptStateStartsEmpty(t *testing.T) {
	repo := &memStoreRepo{loadErr: errors.New("parse failure")}

	svc, _ := newTestService(t, repo)

	// The whole history is dropped, not salvaged; only the fresh view remains
	snapshot := svc.Snapshot()
	assert.Equal(t, 1, snapshot.TotalViews)
	assert.Len(t, snapshot.Events, 1)
}

func TestTracking_CountersMatchEventList(t *testing.T) {
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	svc.TrackResumeDownload(ctx)
	svc.TrackContactInteraction(ctx)
	svc.TrackResumeDownload(ctx)

	snapshot := svc.Snapshot()
	assert.True(t, snapshot.Consistent())
	assert.Equal(t, 1, snapshot.TotalViews)
	assert.Equal(t, 2, snapshot.TotalDownloads)
	assert.Equal(t, 1, snapshot.TotalContacts)
}

func TestTracking_SurvivesSaveLoadRoundTrip(t *testing.T) {
	// Arrange
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)
	svc.TrackResumeDownload(context.Background())

	// Act: a second service seeds from what the first persisted
	restored, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, restored)

	// Assert: counts survive, the invariant holds, and timestamps came
	// back as real time values
	assert.True(t, restored.Consistent())
	assert.Equal(t, 1, restored.TotalViews)
	assert.Equal(t, 1, restored.TotalDownloads)
	require.Len(t, restored.Events, 2)
	original := svc.Snapshot()
	for i, e := range restored.Events {
		assert.False(t, e.Timestamp.IsZero())
		assert.True(t, e.Timestamp.Equal(original.Events[i].Timestamp))
	}
}

func TestTracking_PersistFailureDoesNotLoseInMemoryState(t *testing.T) {
	// Arrange: the durable slot starts working, then breaks
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)
	repo.saveErr = errors.New("quota exceeded")

	// Act: tracking must not panic or surface the failure
	svc.TrackResumeDownload(context.Background())
	svc.TrackContactInteraction(context.Background())

	// Assert: in-memory state stays authoritative
	snapshot := svc.Snapshot()
	assert.Equal(t, 1, snapshot.TotalDownloads)
	assert.Equal(t, 1, snapshot.TotalContacts)
	assert.True(t, snapshot.Consistent())
}

func TestSnapshot_MutationDoesNotAffectStore(t *testing.T) {
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)

	snapshot := svc.Snapshot()
	snapshot.TotalViews = 42
	snapshot.Events[0].Kind = domain.KindContact

	fresh := svc.Snapshot()
	assert.Equal(t, 1, fresh.TotalViews)
	assert.Equal(t, domain.KindView, fresh.Events[0].Kind)
}

func TestClear_ResetsStoreAndSession(t *testing.T) {
	// Arrange
	repo := &memStoreRepo{}
	svc, sess := newTestService(t, repo)
	svc.TrackResumeDownload(context.Background())

	// Act
	svc.Clear(context.Background())

	// Assert: empty store, empty persisted state, session discarded
	snapshot := svc.Snapshot()
	assert.Empty(t, snapshot.Events)
	assert.Equal(t, 0, snapshot.TotalViews)
	assert.Equal(t, 0, snapshot.TotalDownloads)
	assert.Equal(t, 0, snapshot.TotalContacts)
	assert.Equal(t, 1, sess.resets)

	persisted, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted.Events)
}

func TestClear_IsIdempotent(t *testing.T) {
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)
	svc.TrackContactInteraction(context.Background())

	svc.Clear(context.Background())
	first := svc.Snapshot()
	svc.Clear(context.Background())
	second := svc.Snapshot()

	assert.Equal(t, first, second)
	assert.Empty(t, second.Events)

	// Summary on the cleared store is all zeroes
	summary := svc.Summary()
	assert.Equal(t, domain.Summary{}, summary)
}

func TestExport_ParsesBackWithAllEvents(t *testing.T) {
	// Arrange: view (automatic) + download + contact
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)
	svc.TrackResumeDownload(context.Background())
	svc.TrackContactInteraction(context.Background())

	// Act
	exported := svc.Export()

	// Assert: pretty-printed JSON that parses back into the full store
	var parsed domain.AnalyticsData
	require.NoError(t, json.Unmarshal([]byte(exported), &parsed))
	assert.Len(t, parsed.Events, 3)
	assert.Equal(t, 1, parsed.TotalViews)
	assert.Equal(t, 1, parsed.TotalDownloads)
	assert.Equal(t, 1, parsed.TotalContacts)
	assert.Contains(t, exported, "\n  ")

	summary := svc.Summary()
	assert.Equal(t, domain.KindCounts{Views: 1, Downloads: 1, Contacts: 1}, summary.Total)
}

func TestReloadFromStorage_AdoptsOtherProcessState(t *testing.T) {
	// Arrange: two services sharing one durable slot, like two tabs
	repo := &memStoreRepo{}
	svcA, _ := newTestService(t, repo)
	svcB, _ := newTestService(t, repo)

	// Act: A records a download; B reacts to the change notification
	svcA.TrackResumeDownload(context.Background())
	svcB.ReloadFromStorage(context.Background())

	// Assert: B reports the same totals as A - A's write is the new truth,
	// nothing is merged
	assert.Equal(t, svcA.Snapshot().TotalDownloads, svcB.Snapshot().TotalDownloads)
	assert.Equal(t, svcA.Snapshot().TotalViews, svcB.Snapshot().TotalViews)
	assert.True(t, svcB.Snapshot().Consistent())
}

func TestReloadFromStorage_OwnSaveLeavesStateInPlace(t *testing.T) {
	// Arrange: the slot holds exactly the history already in memory, as it
	// does when the watcher fires for this process's own save
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)
	svc.TrackResumeDownload(context.Background())
	before := testutil.ToFloat64(metrics.ExternalReloadsTotal)

	// Act
	svc.ReloadFromStorage(context.Background())

	// Assert: nothing replaced, and the change does not count as external
	snapshot := svc.Snapshot()
	assert.Equal(t, 1, snapshot.TotalDownloads)
	require.Len(t, snapshot.Events, 2)
	assert.Equal(t, before, testutil.ToFloat64(metrics.ExternalReloadsTotal))
}

func TestReloadFromStorage_ConcurrentTrackingIsNotLost(t *testing.T) {
	// Arrange: hold the reload mid-Load while a tracking call queues up
	// behind it
	repo := &gatedStoreRepo{
		memStoreRepo: &memStoreRepo{},
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	sess := &fakeSession{tag: "test-session-tag"}
	svc := NewAnalyticsService(context.Background(), repo, sess, fakeEnv{}, slog.New(slog.DiscardHandler))
	repo.gate.Store(true)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.ReloadFromStorage(context.Background())
	}()
	<-repo.entered // the reload owns the store and is reading the slot
	go func() {
		defer wg.Done()
		svc.TrackResumeDownload(context.Background())
	}()
	close(repo.release)
	wg.Wait()

	// Assert: the download survives the overlapping reload, in memory and
	// in the slot
	snapshot := svc.Snapshot()
	assert.Equal(t, 1, snapshot.TotalDownloads)
	require.Len(t, snapshot.Events, 2)
	assert.True(t, snapshot.Consistent())

	persisted, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, persisted.TotalDownloads)
}

func TestReloadFromStorage_EmptySlotMeansEmptyStore(t *testing.T) {
	repo := &memStoreRepo{}
	svc, _ := newTestService(t, repo)
	svc.TrackResumeDownload(context.Background())

	// Another process cleared the slot entirely
	repo.mu.Lock()
	repo.blob = nil
	repo.mu.Unlock()

	svc.ReloadFromStorage(context.Background())

	snapshot := svc.Snapshot()
	assert.Empty(t, snapshot.Events)
	assert.Equal(t, 0, snapshot.TotalViews)
}
