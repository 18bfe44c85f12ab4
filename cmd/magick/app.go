// cmd/magick/app.go
package main

import (
	"context"

	"go.uber.org/zap"

	"magick-cards/internal/catalog"
	"magick-cards/internal/common/config"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/common/observability"
	"magick-cards/internal/daily"
	"magick-cards/internal/favorites"
	"magick-cards/internal/location"
	"magick-cards/internal/recommendation"
	"magick-cards/internal/recommendation/scoring"
	"magick-cards/internal/settings"
	"magick-cards/internal/storage"
)

// app wires the core components for one CLI invocation.
type app struct {
	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
	obs    *observability.Observability

	store       *storage.Store
	catalog     *catalog.Catalog
	settings    *settings.Manager
	favorites   *favorites.Manager
	daily       *daily.Service
	recommender *recommendation.Recommender
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"env":     cfg.App.Environment,
	})

	obs := observability.New(cfg.Observability, log)

	backend, err := storage.NewBackend(ctx, cfg.Storage)
	if err != nil {
		obs.Shutdown()
		return nil, err
	}
	store := storage.NewStore(backend, cfg.Storage.KeyPrefix, log,
		storage.WithTimeout(config.GetDuration(cfg.Storage.Timeout)),
		storage.WithObservability(obs),
	)

	cat, err := catalog.LoadCached(ctx, cfg.Catalog, store, log)
	if err != nil {
		_ = store.Close()
		obs.Shutdown()
		return nil, err
	}

	provider := location.NewProvider(cfg.Location, log)

	a := &app{
		cfg:         cfg,
		zapLog:      zapLog,
		log:         log,
		obs:         obs,
		store:       store,
		catalog:     cat,
		settings:    settings.NewManager(store, provider, log),
		favorites:   favorites.NewManager(store, log),
		daily:       daily.NewService(cat.Cards(), store, log),
		recommender: recommendation.NewRecommender(scoring.NewEngine(scoring.LoadConfig(), log), cat, obs, log),
	}
	return a, nil
}

// Close waits for background work, then releases the store and telemetry.
func (a *app) Close(ctx context.Context) error {
	err := a.settings.Close(ctx)
	a.favorites.Close()
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	a.obs.Shutdown()
	_ = a.zapLog.Sync()
	return err
}
