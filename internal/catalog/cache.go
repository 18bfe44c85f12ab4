// internal/catalog/cache.go
package catalog

import (
	"context"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/models"
)

// BusinessCache keeps the last business catalog that loaded cleanly.
type BusinessCache interface {
	CachedBusinesses(ctx context.Context) ([]models.Business, errors.Outcome)
	CacheBusinesses(ctx context.Context, businesses []models.Business) errors.Outcome
}

// LoadCached is Load with a business cache behind it. A businesses file that
// loads is written to the cache; one that fails to load is replaced by the
// cached catalog when the cache holds one. Deck errors are never masked.
func LoadCached(ctx context.Context, cfg config.CatalogConfig, cache BusinessCache, log logger.Logger) (*Catalog, error) {
	log = logger.ForComponent(log, "catalog")

	decks, err := LoadDecks(cfg.CardsPath)
	if err != nil {
		return nil, err
	}

	businesses, err := LoadBusinesses(cfg.BusinessesPath)
	if err != nil {
		cached, outcome := cache.CachedBusinesses(ctx)
		if outcome != errors.OutcomeOK || len(cached) == 0 {
			return nil, err
		}
		log.Warn("businesses file unusable, using cached catalog", map[string]interface{}{
			"path":  cfg.BusinessesPath,
			"count": len(cached),
			"error": err,
		})
		return New(decks, cached)
	}

	c, err := New(decks, businesses)
	if err != nil {
		return nil, err
	}
	if outcome := cache.CacheBusinesses(ctx, c.Businesses()); outcome != errors.OutcomeOK {
		log.Warn("business catalog not cached", map[string]interface{}{"outcome": outcome.String()})
	}
	return c, nil
}
