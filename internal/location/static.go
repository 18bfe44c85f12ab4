// internal/location/static.go
package location

import (
	"context"
	"fmt"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/logger"
)

// StaticSource is a Source for hosts without positioning hardware: the
// position comes from configuration. Disabled configuration behaves like
// location services being switched off.
type StaticSource struct {
	cfg config.LocationConfig
}

func NewStaticSource(cfg config.LocationConfig) *StaticSource {
	return &StaticSource{cfg: cfg}
}

func (s *StaticSource) ServicesEnabled(ctx context.Context) (bool, error) {
	return s.cfg.Enabled, ctx.Err()
}

func (s *StaticSource) RequestPermission(ctx context.Context) (bool, error) {
	return s.cfg.Enabled, ctx.Err()
}

func (s *StaticSource) CurrentPosition(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return s.cfg.Latitude, s.cfg.Longitude, nil
}

func (s *StaticSource) ReverseGeocode(ctx context.Context, latitude, longitude float64) (Place, error) {
	if s.cfg.City == "" {
		return Place{}, fmt.Errorf("no place configured for %.4f,%.4f", latitude, longitude)
	}
	return Place{City: s.cfg.City, Region: s.cfg.Region}, nil
}

// NewProvider returns a device provider over the configured source.
func NewProvider(cfg config.LocationConfig, log logger.Logger) *DeviceProvider {
	var source Source
	switch cfg.Source {
	case config.LocationSourceGeoIP:
		source = NewGeoIPSource(cfg)
	default:
		source = NewStaticSource(cfg)
	}
	return NewDeviceProvider(source, cfg, log)
}
