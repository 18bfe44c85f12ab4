// internal/daily/service.go
package daily

import (
	"context"
	"sync"
	"time"

	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/common/metrics"
	"magick-cards/internal/models"
)

// DateStore persists the last computed day key.
type DateStore interface {
	DailyCardDate(ctx context.Context) (string, errors.Outcome)
	SetDailyCardDate(ctx context.Context, date string) errors.Outcome
}

// Service serves the card of the day, persisting the day it was computed for.
type Service struct {
	selector Selector
	store    DateStore
	corpus   []models.Card
	now      func() time.Time
	logger   logger.Logger

	mu   sync.Mutex
	last *Selection
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(corpus []models.Card, store DateStore, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		corpus: corpus,
		now:    time.Now,
		logger: logger.ForComponent(log, "daily"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the card of the current local day. The stored date is only
// rewritten when the day changes.
func (s *Service) Today(ctx context.Context) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.last != nil && s.last.Date == DateKey(now) {
		sel := *s.last
		sel.NewDate = false
		return sel, nil
	}

	lastDate := ""
	if s.store != nil {
		stored, outcome := s.store.DailyCardDate(ctx)
		if outcome == errors.OutcomeFailed {
			s.logger.Warn("daily card date unavailable, recomputing", nil)
		}
		lastDate = stored
	}

	sel, err := s.selector.SelectDaily(s.corpus, now, lastDate)
	if err != nil {
		return Selection{}, err
	}

	if sel.NewDate {
		metrics.DailyCardComputed.Inc()
		if s.store != nil {
			if outcome := s.store.SetDailyCardDate(ctx, sel.Date); outcome == errors.OutcomeFailed {
				s.logger.Warn("failed to persist daily card date", map[string]interface{}{"date": sel.Date})
			}
		}
		s.logger.Info("daily card computed", map[string]interface{}{
			"date":   sel.Date,
			"cardId": sel.Card.ID,
		})
	}

	s.last = &sel
	return sel, nil
}
