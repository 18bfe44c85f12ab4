// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magick_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "magick_recommendation_results",
			Help:    "Number of businesses returned per recommendation request",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	StorageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magick_storage_fallbacks_total",
			Help: "Total number of storage reads or writes that fell back to a default",
		},
		[]string{"key", "outcome"},
	)

	LocationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magick_location_fallbacks_total",
			Help: "Total number of location lookups answered with the fallback location",
		},
		[]string{"reason"},
	)

	DailyCardComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "magick_daily_card_computed_total",
			Help: "Total number of times the daily card was recomputed for a new day",
		},
	)

	FavoritesToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magick_favorites_toggled_total",
			Help: "Total number of favorite toggles by resulting state",
		},
		[]string{"state"},
	)
)
