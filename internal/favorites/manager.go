// internal/favorites/manager.go
package favorites

import (
	"context"
	"strings"
	"sync"
	"time"

	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/common/metrics"
	"magick-cards/internal/models"
)

// Store persists the favorites list.
type Store interface {
	Favorites(ctx context.Context) (models.FavoriteList, errors.Outcome)
	SaveFavorites(ctx context.Context, list models.FavoriteList) errors.Outcome
}

type Listener func(models.FavoriteList)

// Manager owns the set of favorited cards, keyed by card id, in the order
// cards were favorited.
type Manager struct {
	store  Store
	now    func() time.Time
	logger logger.Logger

	writeMu sync.Mutex

	mu        sync.RWMutex
	loaded    bool
	closed    bool
	records   models.FavoriteList
	index     map[string]int
	listeners map[int]Listener
	nextID    int
}

type Option func(*Manager)

// WithClock overrides time.Now for favorite timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, log logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		now:       time.Now,
		logger:    logger.ForComponent(log, "favorites"),
		records:   models.FavoriteList{},
		index:     make(map[string]int),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the stored favorites, dropping duplicate card ids.
func (m *Manager) Load(ctx context.Context) errors.Outcome {
	list, outcome := m.store.Favorites(ctx)
	if outcome == errors.OutcomeFailed {
		m.logger.Warn("favorites unavailable, starting empty", nil)
	}

	records := make(models.FavoriteList, 0, len(list))
	index := make(map[string]int, len(list))
	for _, r := range list {
		if _, dup := index[r.CardID]; dup {
			continue
		}
		index[r.CardID] = len(records)
		records = append(records, r)
	}

	m.mu.Lock()
	m.records = records
	m.index = index
	m.loaded = true
	snapshot := m.copyLocked()
	m.mu.Unlock()

	m.publish(snapshot)
	return outcome
}

// Toggle adds cardID with the current timestamp, or removes it when already
// present, and persists the result. It reports whether the card is now a
// favorite.
func (m *Manager) Toggle(ctx context.Context, cardID string) (bool, errors.Outcome, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return false, errors.OutcomeFailed, errors.NewInvalidArgumentError("cardId is required")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, errors.OutcomeFailed, errors.NewInvalidArgumentError("favorites manager is closed")
	}
	if !m.loaded {
		m.mu.Unlock()
		return false, errors.OutcomeFailed, errors.NewInvalidArgumentError("favorites are not loaded")
	}

	favorited := false
	if i, ok := m.index[cardID]; ok {
		m.records = append(m.records[:i:i], m.records[i+1:]...)
	} else {
		m.records = append(m.records, models.FavoriteRecord{CardID: cardID, Timestamp: m.now().UnixMilli()})
		favorited = true
	}
	m.reindexLocked()
	snapshot := m.copyLocked()
	m.mu.Unlock()

	state := "removed"
	if favorited {
		state = "added"
	}
	metrics.FavoritesToggled.WithLabelValues(state).Inc()

	outcome := m.store.SaveFavorites(ctx, snapshot)
	if outcome == errors.OutcomeFailed {
		m.logger.Warn("favorites kept in memory only", map[string]interface{}{"cardId": cardID})
	}

	m.publish(snapshot)
	return favorited, outcome, nil
}

// IsFavorite is an in-memory check; it reflects the store as of Load plus
// later toggles.
func (m *Manager) IsFavorite(cardID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.index[cardID]
	return ok
}

// List returns the favorites in the order they were added.
func (m *Manager) List() models.FavoriteList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyLocked()
}

// FavoriteCards returns the cards of corpus that are favorites, in corpus order.
func (m *Manager) FavoriteCards(corpus []models.Card) []models.Card {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Card, 0, len(m.index))
	for _, c := range corpus {
		if _, ok := m.index[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

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

func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.listeners = make(map[int]Listener)
	m.mu.Unlock()
}

func (m *Manager) reindexLocked() {
	m.index = make(map[string]int, len(m.records))
	for i, r := range m.records {
		m.index[r.CardID] = i
	}
}

func (m *Manager) copyLocked() models.FavoriteList {
	out := make(models.FavoriteList, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Manager) publish(snapshot models.FavoriteList) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		out := make(models.FavoriteList, len(snapshot))
		copy(out, snapshot)
		l(out)
	}
}
