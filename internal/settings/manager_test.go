// internal/settings/manager_test.go
package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/models"
	"magick-cards/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeProvider struct {
	mu    sync.Mutex
	loc   models.LocationData
	gate  chan struct{}
	calls int
}

func (f *fakeProvider) CurrentLocation(ctx context.Context) models.LocationData {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.loc
}

func (f *fakeProvider) RequestPermission(ctx context.Context) bool { return true }

func (f *fakeProvider) set(loc models.LocationData) {
	f.mu.Lock()
	f.loc = loc
	f.mu.Unlock()
}

type brokenBackend struct{}

func (brokenBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("io error")
}
func (brokenBackend) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("io error")
}
func (brokenBackend) Remove(ctx context.Context, key string) error { return errors.New("io error") }
func (brokenBackend) RemoveAll(ctx context.Context, keys []string) error {
	return errors.New("io error")
}
func (brokenBackend) Close() error { return nil }

var (
	jacksonville = models.LocationData{Latitude: 30.3322, Longitude: -81.6557, City: "Jacksonville, FL"}
	austin       = models.LocationData{Latitude: 30.2672, Longitude: -97.7431, City: "Austin, TX"}
)

func newTestStore(t *testing.T) *storage.Store {
	return storage.NewStore(storage.NewMemoryBackend(), "", logger.NewTestLogger(t))
}

func waitBackfill(t *testing.T, m *Manager) {
	t.Helper()
	select {
	case <-m.BackfillDone():
	case <-time.After(2 * time.Second):
		t.Fatal("location backfill did not finish")
	}
}

// gatedStore blocks Settings until gate is closed.
type gatedStore struct {
	gate    chan struct{}
	entered chan struct{}
	stored  models.UserSettings
}

func (g *gatedStore) Settings(ctx context.Context) (models.UserSettings, apperrors.Outcome) {
	close(g.entered)
	<-g.gate
	return g.stored, apperrors.OutcomeOK
}

func (g *gatedStore) SaveSettings(ctx context.Context, s models.UserSettings) apperrors.Outcome {
	return apperrors.OutcomeOK
}

func boolPtr(b bool) *bool { return &b }

func modePtr(m models.MonetizationMode) *models.MonetizationMode { return &m }

// ==========================
// Lifecycle Tests
// ==========================

func TestManager_Load_DefaultsAndBackfill(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{loc: jacksonville}
	m := NewManager(store, provider, logger.NewTestLogger(t))
	ctx := context.Background()

	assert.Equal(t, StateUninitialized, m.State())

	got, outcome := m.Load(ctx)
	assert.Equal(t, apperrors.OutcomeDefault, outcome)
	assert.Equal(t, StateLoaded, m.State())
	assert.False(t, got.DarkMode)
	assert.Equal(t, models.MonetizationAffiliate, got.MonetizationMode)

	waitBackfill(t, m)

	snap := m.Snapshot()
	require.NotNil(t, snap.Location)
	assert.Equal(t, jacksonville, *snap.Location)

	persisted, outcome := store.Settings(ctx)
	assert.Equal(t, apperrors.OutcomeOK, outcome)
	require.NotNil(t, persisted.Location)
	assert.Equal(t, jacksonville, *persisted.Location)
}

func TestManager_Load_StoredLocationSkipsBackfill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	loc := austin
	require.Equal(t, apperrors.OutcomeOK, store.SaveSettings(ctx, models.UserSettings{
		DarkMode: true, MonetizationMode: models.MonetizationSponsor, Location: &loc,
	}))

	provider := &fakeProvider{loc: jacksonville}
	m := NewManager(store, provider, nil)

	got, outcome := m.Load(ctx)
	assert.Equal(t, apperrors.OutcomeOK, outcome)
	waitBackfill(t, m)

	assert.True(t, got.DarkMode)
	assert.Equal(t, austin, *m.Snapshot().Location)
	assert.Equal(t, 0, provider.calls)
}

func TestManager_Load_Twice(t *testing.T) {
	m := NewManager(newTestStore(t), nil, nil)
	ctx := context.Background()

	_, first := m.Load(ctx)
	_, second := m.Load(ctx)

	assert.Equal(t, apperrors.OutcomeDefault, first)
	assert.Equal(t, apperrors.OutcomeOK, second)
	waitBackfill(t, m)
}

func TestManager_Load_WhileLoading(t *testing.T) {
	stored := models.UserSettings{DarkMode: true, MonetizationMode: models.MonetizationSponsor, Location: &austin}
	store := &gatedStore{gate: make(chan struct{}), entered: make(chan struct{}), stored: stored}
	m := NewManager(store, nil, nil)
	ctx := context.Background()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		m.Load(ctx)
	}()
	<-store.entered
	assert.Equal(t, StateLoading, m.State())

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	got, outcome := m.Load(short)
	assert.Equal(t, apperrors.OutcomeFailed, outcome)
	assert.Equal(t, models.DefaultSettings(), got)

	type result struct {
		s       models.UserSettings
		outcome apperrors.Outcome
	}
	second := make(chan result, 1)
	go func() {
		s, o := m.Load(ctx)
		second <- result{s, o}
	}()

	close(store.gate)
	<-firstDone
	r := <-second
	assert.Equal(t, apperrors.OutcomeOK, r.outcome)
	assert.Equal(t, stored, r.s)
}

func TestManager_Load_AfterClose(t *testing.T) {
	m := NewManager(newTestStore(t), &fakeProvider{loc: jacksonville}, nil)
	ctx := context.Background()

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, StateClosed, m.State())
	waitBackfill(t, m)

	got, outcome := m.Load(ctx)
	assert.Equal(t, apperrors.OutcomeFailed, outcome)
	assert.Equal(t, models.DefaultSettings(), got)
	assert.Equal(t, StateClosed, m.State())
}

func TestManager_Load_BrokenStore(t *testing.T) {
	store := storage.NewStore(brokenBackend{}, "", nil)
	m := NewManager(store, &fakeProvider{loc: jacksonville}, nil)
	ctx := context.Background()

	got, outcome := m.Load(ctx)
	assert.Equal(t, apperrors.OutcomeFailed, outcome)
	assert.Equal(t, models.DefaultSettings(), got)

	waitBackfill(t, m)
	assert.Equal(t, jacksonville, *m.Snapshot().Location, "memory keeps the backfilled value")

	updated, outcome, err := m.Update(ctx, models.SettingsPatch{DarkMode: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, apperrors.OutcomeFailed, outcome)
	assert.True(t, updated.DarkMode)
}

// ==========================
// Update Tests
// ==========================

func TestManager_Update_ReadYourWrites(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store, nil, nil)
	ctx := context.Background()
	m.Load(ctx)

	got, outcome, err := m.Update(ctx, models.SettingsPatch{MonetizationMode: modePtr(models.MonetizationSponsor)})
	require.NoError(t, err)
	assert.Equal(t, apperrors.OutcomeOK, outcome)
	assert.Equal(t, models.MonetizationSponsor, got.MonetizationMode)
	assert.False(t, got.DarkMode)
	assert.Equal(t, got, m.Snapshot())

	persisted, _ := store.Settings(ctx)
	assert.Equal(t, got, persisted)
}

func TestManager_Update_Rejections(t *testing.T) {
	ctx := context.Background()

	notLoaded := NewManager(newTestStore(t), nil, nil)
	_, _, err := notLoaded.Update(ctx, models.SettingsPatch{DarkMode: boolPtr(true)})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))

	m := NewManager(newTestStore(t), nil, nil)
	m.Load(ctx)
	got, _, err := m.Update(ctx, models.SettingsPatch{MonetizationMode: modePtr("referral")})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownMonetizationMode))
	assert.Equal(t, models.MonetizationAffiliate, got.MonetizationMode)
	assert.Equal(t, models.MonetizationAffiliate, m.Snapshot().MonetizationMode)
}

func TestManager_Update_BackfillLastCompletionWins(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{loc: jacksonville, gate: make(chan struct{})}
	m := NewManager(store, provider, nil)
	ctx := context.Background()

	m.Load(ctx)

	loc := austin
	_, _, err := m.Update(ctx, models.SettingsPatch{DarkMode: boolPtr(true), Location: &loc})
	require.NoError(t, err)

	close(provider.gate)
	waitBackfill(t, m)

	snap := m.Snapshot()
	assert.True(t, snap.DarkMode, "backfill merges instead of replacing")
	assert.Equal(t, jacksonville, *snap.Location)

	persisted, _ := store.Settings(ctx)
	assert.Equal(t, snap, persisted)
}

func TestManager_RefreshLocation(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{loc: jacksonville}
	m := NewManager(store, provider, nil)
	ctx := context.Background()
	m.Load(ctx)
	waitBackfill(t, m)

	provider.set(austin)
	got, outcome, err := m.RefreshLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, apperrors.OutcomeOK, outcome)
	assert.Equal(t, austin, *got.Location)

	persisted, _ := store.Settings(ctx)
	assert.Equal(t, austin, *persisted.Location)

	_, _, err = NewManager(store, nil, nil).RefreshLocation(ctx)
	assert.Error(t, err)
}

// ==========================
// Subscription & Close
// ==========================

func TestManager_Subscribe(t *testing.T) {
	m := NewManager(newTestStore(t), nil, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []models.UserSettings
	unsubscribe := m.Subscribe(func(s models.UserSettings) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	m.Load(ctx)
	m.Update(ctx, models.SettingsPatch{DarkMode: boolPtr(true)})
	unsubscribe()
	m.Update(ctx, models.SettingsPatch{DarkMode: boolPtr(false)})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.False(t, seen[0].DarkMode)
	assert.True(t, seen[1].DarkMode)
}

func TestManager_Close(t *testing.T) {
	provider := &fakeProvider{loc: jacksonville, gate: make(chan struct{})}
	m := NewManager(newTestStore(t), provider, nil)
	ctx := context.Background()
	m.Load(ctx)

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Close(short), context.DeadlineExceeded)

	close(provider.gate)
	require.NoError(t, m.Close(ctx))
	assert.Equal(t, StateClosed, m.State())

	_, _, err := m.Update(ctx, models.SettingsPatch{DarkMode: boolPtr(true)})
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "unknown", State(42).String())
}
