// internal/location/device.go
package location

import (
	"context"
	"time"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/common/metrics"
	"magick-cards/internal/models"

	"golang.org/x/sync/singleflight"
)

// Place is a reverse-geocoded position.
type Place struct {
	City   string
	Region string
}

// Source is the platform location facility the device provider drives.
type Source interface {
	ServicesEnabled(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (latitude, longitude float64, err error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (Place, error)
}

// DeviceProvider resolves the device position through a Source, answering with
// the fallback location whenever the source cannot. Concurrent lookups share
// one in-flight request.
type DeviceProvider struct {
	source   Source
	fallback models.LocationData
	timeout  time.Duration
	logger   logger.Logger
	group    singleflight.Group
}

func NewDeviceProvider(source Source, cfg config.LocationConfig, log logger.Logger) *DeviceProvider {
	return &DeviceProvider{
		source:   source,
		fallback: Fallback(cfg),
		timeout:  config.GetDuration(cfg.Timeout),
		logger:   logger.ForComponent(log, "location"),
	}
}

func (p *DeviceProvider) RequestPermission(ctx context.Context) bool {
	granted, err := p.source.RequestPermission(ctx)
	if err != nil {
		p.logger.Warn("permission request failed", map[string]interface{}{"error": err})
		return false
	}
	return granted
}

// CurrentLocation joins the in-flight lookup or starts one. The shared lookup
// is detached from the caller that started it and bounded by the provider
// timeout; a caller whose ctx ends first gets the fallback.
func (p *DeviceProvider) CurrentLocation(ctx context.Context) models.LocationData {
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan("current", func() (interface{}, error) {
		return p.lookup(shared), nil
	})

	select {
	case res := <-ch:
		return res.Val.(models.LocationData)
	case <-ctx.Done():
		return p.useFallback("cancelled", ctx.Err())
	}
}

func (p *DeviceProvider) lookup(ctx context.Context) models.LocationData {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	enabled, err := p.source.ServicesEnabled(ctx)
	if err != nil {
		return p.useFallback("services_error", err)
	}
	if !enabled {
		return p.useFallback("services_disabled", nil)
	}

	if !p.RequestPermission(ctx) {
		return p.useFallback("permission_denied", nil)
	}

	lat, lon, err := p.source.CurrentPosition(ctx)
	if err != nil {
		return p.useFallback("position_error", err)
	}

	city, region := UnknownCity, ""
	place, err := p.source.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		p.logger.Warn("reverse geocoding failed", map[string]interface{}{"error": err})
	} else {
		if place.City != "" {
			city = place.City
		}
		region = place.Region
	}
	if region != "" {
		city = city + ", " + region
	}

	return models.LocationData{Latitude: lat, Longitude: lon, City: city}
}

func (p *DeviceProvider) useFallback(reason string, cause error) models.LocationData {
	metrics.LocationFallbacks.WithLabelValues(reason).Inc()
	p.logger.Info("using fallback location", map[string]interface{}{
		"reason": reason,
		"error":  errors.NewLocationUnavailableError(reason, cause),
		"city":   p.fallback.City,
	})
	return p.fallback
}
