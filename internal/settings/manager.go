// internal/settings/manager.go
package settings

import (
	"context"
	"sync"

	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/location"
	"magick-cards/internal/models"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateLoaded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Store persists the settings record.
type Store interface {
	Settings(ctx context.Context) (models.UserSettings, errors.Outcome)
	SaveSettings(ctx context.Context, s models.UserSettings) errors.Outcome
}

// Listener is called with a snapshot after every change.
type Listener func(models.UserSettings)

// Manager owns the user settings. Reads are served from memory; every change
// is persisted before the call that made it returns.
type Manager struct {
	store    Store
	provider location.Provider
	logger   logger.Logger

	// writeMu serializes merge+persist+publish so stored order matches memory order.
	writeMu sync.Mutex

	mu        sync.RWMutex
	state     State
	settings  models.UserSettings
	listeners map[int]Listener
	nextID    int

	loadDone     chan struct{}
	backfillDone chan struct{}
	backfillOnce sync.Once
}

func NewManager(store Store, provider location.Provider, log logger.Logger) *Manager {
	return &Manager{
		store:        store,
		provider:     provider,
		logger:       logger.ForComponent(log, "settings"),
		settings:     models.DefaultSettings(),
		listeners:    make(map[int]Listener),
		loadDone:     make(chan struct{}),
		backfillDone: make(chan struct{}),
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Load reads the stored settings. When no location is known yet, a background
// lookup is started and its result merged and persisted on completion; await
// it with BackfillDone. A Load during another waits for it; a Load after
// Close reports OutcomeFailed with the defaults.
func (m *Manager) Load(ctx context.Context) (models.UserSettings, errors.Outcome) {
	m.mu.Lock()
	switch m.state {
	case StateLoaded:
		snapshot := m.settings.Clone()
		m.mu.Unlock()
		return snapshot, errors.OutcomeOK
	case StateClosed:
		m.mu.Unlock()
		return models.DefaultSettings(), errors.OutcomeFailed
	case StateLoading:
		m.mu.Unlock()
		select {
		case <-m.loadDone:
			return m.Snapshot(), errors.OutcomeOK
		case <-ctx.Done():
			return models.DefaultSettings(), errors.OutcomeFailed
		}
	}
	m.state = StateLoading
	m.mu.Unlock()

	loaded, outcome := m.store.Settings(ctx)
	if outcome == errors.OutcomeFailed {
		m.logger.Warn("settings unavailable, using defaults", nil)
	}

	m.mu.Lock()
	m.settings = loaded.Clone()
	m.state = StateLoaded
	snapshot := m.settings.Clone()
	m.mu.Unlock()
	close(m.loadDone)

	if snapshot.Location == nil && m.provider != nil {
		go m.backfillLocation()
	} else {
		m.finishBackfill()
	}

	m.publish(snapshot)
	return snapshot, outcome
}

// BackfillDone is closed once the location backfill started by Load has
// finished, or immediately by Load when none was needed.
func (m *Manager) BackfillDone() <-chan struct{} {
	return m.backfillDone
}

func (m *Manager) finishBackfill() {
	m.backfillOnce.Do(func() { close(m.backfillDone) })
}

func (m *Manager) backfillLocation() {
	defer m.finishBackfill()

	loc := m.provider.CurrentLocation(context.Background())
	m.logger.Info("location backfilled", map[string]interface{}{"city": loc.City})

	if _, _, err := m.apply(context.Background(), models.SettingsPatch{Location: &loc}); err != nil {
		m.logger.Warn("location backfill discarded", map[string]interface{}{"error": err})
	}
}

// Snapshot returns a copy of the current settings.
func (m *Manager) Snapshot() models.UserSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.Clone()
}

// Update merges patch into the current settings and persists the result
// before returning it.
func (m *Manager) Update(ctx context.Context, patch models.SettingsPatch) (models.UserSettings, errors.Outcome, error) {
	if patch.MonetizationMode != nil && !patch.MonetizationMode.Valid() {
		return m.Snapshot(), errors.OutcomeFailed, errors.NewUnknownMonetizationModeError(string(*patch.MonetizationMode))
	}
	return m.apply(ctx, patch)
}

// RefreshLocation queries the provider again regardless of the stored
// location and persists the answer.
func (m *Manager) RefreshLocation(ctx context.Context) (models.UserSettings, errors.Outcome, error) {
	if m.provider == nil {
		return m.Snapshot(), errors.OutcomeFailed, errors.NewInvalidArgumentError("no location provider configured")
	}
	loc := m.provider.CurrentLocation(ctx)
	return m.apply(ctx, models.SettingsPatch{Location: &loc})
}

func (m *Manager) apply(ctx context.Context, patch models.SettingsPatch) (models.UserSettings, errors.Outcome, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	switch m.state {
	case StateLoaded:
	case StateClosed:
		m.mu.Unlock()
		return models.UserSettings{}, errors.OutcomeFailed, errors.NewInvalidArgumentError("settings manager is closed")
	default:
		m.mu.Unlock()
		return models.UserSettings{}, errors.OutcomeFailed, errors.NewInvalidArgumentError("settings are not loaded")
	}
	m.settings = patch.Apply(m.settings)
	snapshot := m.settings.Clone()
	m.mu.Unlock()

	outcome := m.store.SaveSettings(ctx, snapshot)
	if outcome == errors.OutcomeFailed {
		m.logger.Warn("settings kept in memory only", nil)
	}

	m.publish(snapshot)
	return snapshot, outcome, nil
}

// Subscribe registers l for change notifications and returns a function that
// removes it.
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publish(snapshot models.UserSettings) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l(snapshot.Clone())
	}
}

// Close waits for a pending location backfill, then drops all listeners.
// Later loads and updates fail. Closing a manager that never loaded releases
// BackfillDone waiters at once.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateUninitialized {
		m.state = StateClosed
		m.listeners = make(map[int]Listener)
		m.mu.Unlock()
		m.finishBackfill()
		return nil
	}
	m.mu.Unlock()

	select {
	case <-m.backfillDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	m.state = StateClosed
	m.listeners = make(map[int]Listener)
	m.mu.Unlock()
	return nil
}
