// internal/storage/store.go
package storage

import (
	"context"
	"encoding/json"
	"time"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/common/metrics"
	"magick-cards/internal/common/observability"
	"magick-cards/internal/models"
)

// Logical keys. Store prefixes each with its namespace before it reaches the backend.
const (
	KeySettings      = "settings"
	KeyFavorites     = "favorites"
	KeyDailyCardDate = "daily_card_date"
	KeyBusinesses    = "businesses"
)

// legacyFavoritesKey is where early installs kept a bare list of card ids, unprefixed.
const legacyFavoritesKey = "favorites"

// AllKeys lists every logical key the application writes.
var AllKeys = []string{KeySettings, KeyFavorites, KeyDailyCardDate, KeyBusinesses}

// Store is the persistent state store. Raw operations surface StorageError;
// the typed helpers never fail and instead report an errors.Outcome next to a
// usable value.
type Store struct {
	backend Backend
	prefix  string
	timeout time.Duration
	obs     *observability.Observability
	logger  logger.Logger
}

type StoreOption func(*Store)

func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.timeout = d }
}

func WithObservability(obs *observability.Observability) StoreOption {
	return func(s *Store) { s.obs = obs }
}

func NewStore(backend Backend, prefix string, log logger.Logger, opts ...StoreOption) *Store {
	if prefix == "" {
		prefix = config.DefaultKeyPrefix
	}
	s := &Store{
		backend: backend,
		prefix:  prefix,
		timeout: 3 * time.Second,
		logger:  logger.ForComponent(log, "storage"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ==========================
// Raw Operations
// ==========================

// Get returns the blob stored under name; found is false when nothing is stored.
func (s *Store) Get(ctx context.Context, name string) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, found, err := s.backend.Get(ctx, s.key(name))
	s.record(ctx, "get", err)
	if err != nil {
		return nil, false, errors.NewStorageError("get", name, err)
	}
	return v, found, nil
}

func (s *Store) Set(ctx context.Context, name string, value []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.backend.Set(ctx, s.key(name), value)
	s.record(ctx, "set", err)
	if err != nil {
		return errors.NewStorageError("set", name, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.backend.Remove(ctx, s.key(name))
	s.record(ctx, "remove", err)
	if err != nil {
		return errors.NewStorageError("remove", name, err)
	}
	return nil
}

func (s *Store) RemoveAll(ctx context.Context, names []string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.key(n)
	}

	err := s.backend.RemoveAll(ctx, keys)
	s.record(ctx, "remove_all", err)
	if err != nil {
		return errors.NewStorageError("remove_all", "*", err)
	}
	return nil
}

// Clear removes every application key, including the unprefixed legacy
// favorites so they are not read back after a reset.
func (s *Store) Clear(ctx context.Context) errors.Outcome {
	if err := s.RemoveAll(ctx, AllKeys); err != nil {
		s.warn("clear", "*", err)
		return errors.OutcomeFailed
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.backend.Remove(ctx, legacyFavoritesKey)
	s.record(ctx, "remove", err)
	if err != nil {
		s.warn("clear", legacyFavoritesKey, errors.NewStorageError("remove", legacyFavoritesKey, err))
		return errors.OutcomeFailed
	}
	return errors.OutcomeOK
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) record(ctx context.Context, op string, err error) {
	outcome := errors.OutcomeOK
	if err != nil {
		outcome = errors.OutcomeFailed
	}
	s.obs.RecordStorageOperation(ctx, op, outcome.String())
}

// ==========================
// Typed Helpers
// ==========================

// loadJSON decodes the blob under name into dst. dst keeps whatever it held
// when nothing is stored, so callers pre-fill it with their default.
func (s *Store) loadJSON(ctx context.Context, name string, dst interface{}) errors.Outcome {
	raw, found, err := s.Get(ctx, name)
	if err != nil {
		s.warn("get", name, err)
		return s.fallback(name, errors.OutcomeFailed)
	}
	if !found || len(raw) == 0 {
		return s.fallback(name, errors.OutcomeDefault)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.warn("decode", name, errors.NewStorageDecodeError(name, err))
		return s.fallback(name, errors.OutcomeFailed)
	}
	return errors.OutcomeOK
}

func (s *Store) saveJSON(ctx context.Context, name string, v interface{}) errors.Outcome {
	raw, err := json.Marshal(v)
	if err != nil {
		s.warn("encode", name, errors.NewStorageEncodeError(name, err))
		return s.fallback(name, errors.OutcomeFailed)
	}
	if err := s.Set(ctx, name, raw); err != nil {
		s.warn("set", name, err)
		return s.fallback(name, errors.OutcomeFailed)
	}
	return errors.OutcomeOK
}

func (s *Store) fallback(name string, outcome errors.Outcome) errors.Outcome {
	metrics.StorageFallbacks.WithLabelValues(name, outcome.String()).Inc()
	return outcome
}

func (s *Store) warn(op, name string, err error) {
	s.logger.Warn("storage operation failed, using default", map[string]interface{}{
		"op":    op,
		"key":   name,
		"error": err,
	})
}

// Settings returns the stored settings merged over the defaults. Fields absent
// from the stored record keep their default value.
func (s *Store) Settings(ctx context.Context) (models.UserSettings, errors.Outcome) {
	settings := models.DefaultSettings()
	outcome := s.loadJSON(ctx, KeySettings, &settings)
	if outcome == errors.OutcomeFailed {
		return models.DefaultSettings(), outcome
	}
	return settings, outcome
}

func (s *Store) SaveSettings(ctx context.Context, settings models.UserSettings) errors.Outcome {
	return s.saveJSON(ctx, KeySettings, settings)
}

// Favorites returns the stored favorites. When the namespaced key is empty the
// legacy unprefixed list of ids is read instead.
func (s *Store) Favorites(ctx context.Context) (models.FavoriteList, errors.Outcome) {
	var list models.FavoriteList
	outcome := s.loadJSON(ctx, KeyFavorites, &list)
	switch outcome {
	case errors.OutcomeOK:
		return list, outcome
	case errors.OutcomeFailed:
		return models.FavoriteList{}, outcome
	}

	if legacy, ok := s.legacyFavorites(ctx); ok {
		return legacy, errors.OutcomeOK
	}
	return models.FavoriteList{}, errors.OutcomeDefault
}

func (s *Store) legacyFavorites(ctx context.Context) (models.FavoriteList, bool) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, found, err := s.backend.Get(ctx, legacyFavoritesKey)
	if err != nil || !found || len(raw) == 0 {
		return nil, false
	}
	var list models.FavoriteList
	if err := json.Unmarshal(raw, &list); err != nil {
		s.warn("decode", legacyFavoritesKey, errors.NewStorageDecodeError(legacyFavoritesKey, err))
		return nil, false
	}
	s.logger.Info("read legacy favorites", map[string]interface{}{"count": len(list)})
	return list, true
}

func (s *Store) SaveFavorites(ctx context.Context, list models.FavoriteList) errors.Outcome {
	if list == nil {
		list = models.FavoriteList{}
	}
	return s.saveJSON(ctx, KeyFavorites, list)
}

// DailyCardDate returns the last day key the daily card was computed for, or
// "" when none is stored.
func (s *Store) DailyCardDate(ctx context.Context) (string, errors.Outcome) {
	var date string
	outcome := s.loadJSON(ctx, KeyDailyCardDate, &date)
	if outcome != errors.OutcomeOK {
		return "", outcome
	}
	return date, outcome
}

func (s *Store) SetDailyCardDate(ctx context.Context, date string) errors.Outcome {
	return s.saveJSON(ctx, KeyDailyCardDate, date)
}

// CachedBusinesses returns the cached business catalog, or an empty list.
func (s *Store) CachedBusinesses(ctx context.Context) ([]models.Business, errors.Outcome) {
	var list []models.Business
	outcome := s.loadJSON(ctx, KeyBusinesses, &list)
	if outcome != errors.OutcomeOK || list == nil {
		return []models.Business{}, outcome
	}
	return list, outcome
}

func (s *Store) CacheBusinesses(ctx context.Context, businesses []models.Business) errors.Outcome {
	if businesses == nil {
		businesses = []models.Business{}
	}
	return s.saveJSON(ctx, KeyBusinesses, businesses)
}
