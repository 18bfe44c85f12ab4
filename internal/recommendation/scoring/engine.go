// internal/recommendation/scoring/engine.go
package scoring

import (
	"strings"

	"golang.org/x/text/cases"

	"magick-cards/internal/common/logger"
	"magick-cards/internal/models"
	"magick-cards/internal/recommendation/distance"
)

// Engine scores businesses against a drawn card.
type Engine struct {
	config *Config
	logger logger.Logger
}

func NewEngine(config *Config, log logger.Logger) *Engine {
	if config == nil {
		config = LoadConfig()
	}
	return &Engine{
		config: config,
		logger: logger.ForComponent(log, "scoring"),
	}
}

// Score returns the additive match score of business for card. Pass
// distance.Unknown when the user location is not known. Absent optional card
// fields contribute nothing.
func (e *Engine) Score(card *models.Card, business *models.Business, distanceMiles float64, mode models.MonetizationMode) int {
	return e.distanceBonus(distanceMiles) +
		e.tagBonus(card.Tags, business.Tags) +
		e.categoryBonus(card.BusinessCategories, business.Category) +
		e.monetizationBonus(business.Source, mode) +
		e.intensityBonus(card.Intensity, business.Tags)
}

// Candidates scores every business in catalog order. At-home cards produce no
// candidates at all. A nil origin means the user location is unknown.
func (e *Engine) Candidates(card *models.Card, businesses []models.Business, origin *models.LocationData, mode models.MonetizationMode) []models.RecommendedBusiness {
	if card == nil || card.IsAtHome {
		return []models.RecommendedBusiness{}
	}

	out := make([]models.RecommendedBusiness, 0, len(businesses))
	for i := range businesses {
		b := &businesses[i]

		dist := distance.Unknown
		var reported *float64
		if origin != nil {
			d := distance.Miles(origin.Latitude, origin.Longitude, b.Location.Latitude, b.Location.Longitude)
			dist = d
			reported = &d
		}

		out = append(out, models.RecommendedBusiness{
			Business:      *b,
			DistanceMiles: reported,
			MatchScore:    e.Score(card, b, dist, mode),
			Promoted:      b.Source == mode,
		})
	}

	e.logger.Debug("candidates scored", map[string]interface{}{
		"cardId":     card.ID,
		"candidates": len(out),
		"hasOrigin":  origin != nil,
	})

	return out
}

func (e *Engine) distanceBonus(miles float64) int {
	for _, b := range e.config.Buckets {
		if miles < b.WithinMiles {
			return b.Bonus
		}
	}
	return 0
}

func (e *Engine) tagBonus(cardTags, businessTags []string) int {
	if len(cardTags) == 0 || len(businessTags) == 0 {
		return 0
	}

	have := make(map[string]struct{}, len(businessTags))
	for _, t := range businessTags {
		have[fold(t)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(cardTags))
	matches := 0
	for _, t := range cardTags {
		key := fold(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := have[key]; ok {
			matches++
		}
	}
	return matches * e.config.TagMatchBonus
}

// categoryBonus counts card categories contained in the business category,
// case-insensitively ("restaurant" matches "Italian Restaurant").
func (e *Engine) categoryBonus(cardCategories []string, businessCategory string) int {
	if len(cardCategories) == 0 || businessCategory == "" {
		return 0
	}

	category := fold(businessCategory)
	seen := make(map[string]struct{}, len(cardCategories))
	matches := 0
	for _, c := range cardCategories {
		key := fold(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if strings.Contains(category, key) {
			matches++
		}
	}
	return matches * e.config.CategoryMatchBonus
}

func (e *Engine) monetizationBonus(source, mode models.MonetizationMode) int {
	if source == mode {
		return e.config.MonetizationBonus
	}
	return 0
}

func (e *Engine) intensityBonus(intensity int, businessTags []string) int {
	if intensity < e.config.IntensityThreshold {
		return 0
	}
	for _, t := range businessTags {
		for _, want := range e.config.IntensityBusinessTag {
			if strings.EqualFold(t, want) {
				return e.config.IntensityBonus
			}
		}
	}
	return 0
}

// fold case-folds s for comparison. A Caser is not safe for concurrent use,
// so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
