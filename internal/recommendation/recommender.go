// internal/recommendation/recommender.go
package recommendation

import (
	"context"
	"time"

	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/common/metrics"
	"magick-cards/internal/common/observability"
	"magick-cards/internal/models"
	"magick-cards/internal/recommendation/ranking"
	"magick-cards/internal/recommendation/scoring"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessSource supplies the business catalog in its stable order.
type BusinessSource interface {
	Businesses() []models.Business
}

// StaticBusinesses adapts a plain slice to BusinessSource.
type StaticBusinesses []models.Business

func (s StaticBusinesses) Businesses() []models.Business { return s }

type Recommender struct {
	engine  *scoring.Engine
	source  BusinessSource
	obs     *observability.Observability
	logger  logger.Logger
	maxSize int
}

func NewRecommender(engine *scoring.Engine, source BusinessSource, obs *observability.Observability, log logger.Logger) *Recommender {
	log = logger.ForComponent(log, "recommender")
	if engine == nil {
		engine = scoring.NewEngine(nil, log)
	}
	return &Recommender{
		engine:  engine,
		source:  source,
		obs:     obs,
		logger:  log,
		maxSize: ranking.MaxResults,
	}
}

// Recommend scores the catalog against card using the user's location and
// monetization preference and returns at most three businesses, best first.
// Cards meant for home return an empty list.
func (r *Recommender) Recommend(ctx context.Context, card *models.Card, settings models.UserSettings) ([]models.RecommendedBusiness, error) {
	start := time.Now()
	requestID := uuid.New().String()

	ctx, span := r.obs.Tracer().Start(ctx, "recommendation.Recommend")
	defer span.End()

	log := r.logger.With(map[string]interface{}{"requestId": requestID})

	if card == nil {
		err := errors.NewInvalidArgumentError("card is required")
		r.finish(ctx, span, start, "invalid", 0, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("card.id", card.ID),
		attribute.String("monetization.mode", string(settings.MonetizationMode)),
	)

	if !settings.MonetizationMode.Valid() {
		err := errors.NewUnknownMonetizationModeError(string(settings.MonetizationMode))
		r.finish(ctx, span, start, "invalid", 0, err)
		return nil, err
	}

	if card.IsAtHome {
		log.Debug("card is at home, no recommendations", map[string]interface{}{"cardId": card.ID})
		r.finish(ctx, span, start, "at_home", 0, nil)
		return []models.RecommendedBusiness{}, nil
	}

	var businesses []models.Business
	if r.source != nil {
		businesses = r.source.Businesses()
	}

	candidates := r.engine.Candidates(card, businesses, settings.Location, settings.MonetizationMode)
	result := ranking.RankN(candidates, r.maxSize)

	log.Info("recommendations ranked", map[string]interface{}{
		"cardId":      card.ID,
		"candidates":  len(candidates),
		"returned":    len(result),
		"hasLocation": settings.Location != nil,
	})

	r.finish(ctx, span, start, "ok", len(result), nil)
	return result, nil
}

func (r *Recommender) finish(ctx context.Context, span trace.Span, start time.Time, outcome string, results int, err error) {
	span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("results", results),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	metrics.RecommendationsServed.WithLabelValues(outcome).Inc()
	metrics.RecommendationResults.Observe(float64(results))
	r.obs.RecordRecommendation(ctx, time.Since(start), outcome, results)
}
