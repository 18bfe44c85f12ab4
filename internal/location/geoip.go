// internal/location/geoip.go
package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"magick-cards/internal/common/config"
	httpclient "magick-cards/internal/common/http"
)

// geoIPResponse matches the common shape of IP geolocation endpoints
// (ip-api.com style field names).
type geoIPResponse struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
}

// lookupInterval is the minimum spacing between lookup requests.
const lookupInterval = 2 * time.Second

// GeoIPSource positions the host by its public address. The lookup answers
// both the position and the place, so ReverseGeocode serves the place of the
// last successful lookup.
type GeoIPSource struct {
	client  *httpclient.Client
	limiter *rate.Limiter
	url     string
	enabled bool

	mu   sync.Mutex
	last *geoIPResponse
}

func NewGeoIPSource(cfg config.LocationConfig) *GeoIPSource {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GeoIPSource{
		client:  httpclient.NewClient(timeout),
		limiter: rate.NewLimiter(rate.Every(lookupInterval), 1),
		url:     cfg.LookupURL,
		enabled: cfg.Enabled && cfg.LookupURL != "",
	}
}

func (s *GeoIPSource) ServicesEnabled(ctx context.Context) (bool, error) {
	return s.enabled, ctx.Err()
}

func (s *GeoIPSource) RequestPermission(ctx context.Context) (bool, error) {
	return s.enabled, ctx.Err()
}

func (s *GeoIPSource) CurrentPosition(ctx context.Context) (float64, float64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	var resp geoIPResponse
	if err := s.client.GetJSON(ctx, s.url, &resp); err != nil {
		return 0, 0, err
	}
	if resp.Status != "" && resp.Status != "success" {
		return 0, 0, fmt.Errorf("geoip lookup failed: %s", resp.Message)
	}

	s.mu.Lock()
	s.last = &resp
	s.mu.Unlock()

	return resp.Latitude, resp.Longitude, nil
}

func (s *GeoIPSource) ReverseGeocode(ctx context.Context, latitude, longitude float64) (Place, error) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil || last.Latitude != latitude || last.Longitude != longitude || last.City == "" {
		return Place{}, fmt.Errorf("no place known for %.4f,%.4f", latitude, longitude)
	}
	return Place{City: last.City, Region: last.Region}, nil
}
