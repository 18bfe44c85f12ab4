// internal/models/card.go
package models

type CardType string

const (
	CardTypeQuestion CardType = "question"
	CardTypeMission  CardType = "mission"
)

// Card is a single prompt drawn from a deck. Cards are loaded once with the
// catalog and never mutated.
type Card struct {
	ID                 string   `json:"id" yaml:"id"`
	Text               string   `json:"text" yaml:"text"`
	Type               CardType `json:"type" yaml:"type"`
	Deck               string   `json:"deck" yaml:"deck"`
	Tags               []string `json:"tags" yaml:"tags"`
	RecommendationType string   `json:"recommendationType,omitempty" yaml:"recommendationType,omitempty"`
	BusinessCategories []string `json:"businessCategories,omitempty" yaml:"businessCategories,omitempty"`
	Mood               string   `json:"mood,omitempty" yaml:"mood,omitempty"`
	Intensity          int      `json:"intensity,omitempty" yaml:"intensity,omitempty"` // 1..5, 0 when unset
	IsAtHome           bool     `json:"isAtHome,omitempty" yaml:"isAtHome,omitempty"`
}

type Deck struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Color       string `json:"color" yaml:"color"`
	Icon        string `json:"icon" yaml:"icon"`
	Cards       []Card `json:"cards" yaml:"cards"`
}
