// internal/models/business.go
package models

type BusinessLocation struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Address   string  `json:"address" yaml:"address"`
}

// Business is an entry of the static business catalog.
type Business struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Category    string           `json:"category" yaml:"category"`
	Tags        []string         `json:"tags" yaml:"tags"`
	Location    BusinessLocation `json:"location" yaml:"location"`
	Source      MonetizationMode `json:"source" yaml:"source"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Rating      *float64         `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// RecommendedBusiness is a business scored for one card. It lives for a
// single recommendation request and is never persisted.
type RecommendedBusiness struct {
	Business
	// DistanceMiles is nil when the user location was unknown at scoring time.
	DistanceMiles *float64 `json:"distanceMiles,omitempty"`
	MatchScore    int      `json:"matchScore"`
	Promoted      bool     `json:"promoted"`
}
