// internal/location/provider.go
package location

import (
	"context"

	"magick-cards/internal/common/config"
	"magick-cards/internal/models"
)

// UnknownCity is reported when a position could not be named.
const UnknownCity = "Unknown"

// Provider answers where the user is. CurrentLocation never fails; it falls
// back to a fixed location instead.
type Provider interface {
	CurrentLocation(ctx context.Context) models.LocationData
	RequestPermission(ctx context.Context) bool
}

// Fallback returns the configured fallback location.
func Fallback(cfg config.LocationConfig) models.LocationData {
	lat, lon, city := cfg.FallbackLatitude, cfg.FallbackLongitude, cfg.FallbackCity
	if lat == 0 && lon == 0 {
		lat, lon = config.DefaultFallbackLatitude, config.DefaultFallbackLongitude
	}
	if city == "" {
		city = config.DefaultFallbackCity
	}
	return models.LocationData{Latitude: lat, Longitude: lon, City: city}
}

// FallbackProvider always answers with the fallback location.
type FallbackProvider struct {
	location models.LocationData
}

func NewFallbackProvider(cfg config.LocationConfig) *FallbackProvider {
	return &FallbackProvider{location: Fallback(cfg)}
}

func (p *FallbackProvider) CurrentLocation(ctx context.Context) models.LocationData {
	return p.location
}

func (p *FallbackProvider) RequestPermission(ctx context.Context) bool {
	return false
}
