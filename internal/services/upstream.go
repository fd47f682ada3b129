package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"github.com/bobby-s-dev/farmlens/pkg/client"
	"go.uber.org/zap"
)

const forecastCacheKey = "bmkg:forecast"

type ForecastSource interface {
	GetForecastRaw(ctx context.Context) ([]byte, error)
}

type RegionSource interface {
	GetRaw(ctx context.Context, path string) ([]byte, error)
}

type breakerReporter interface {
	BreakerState() string
}

// RegionPathPatterns lists the region lookups the proxy forwards.
var RegionPathPatterns = []string{
	"provinces.json",
	"regencies/{code}.json",
	"districts/{code}.json",
	"villages/{code}.json",
}

var regionPrefixes = []string{"regencies/", "districts/", "villages/"}

// ValidRegionPath reports whether path is one of the allowed wilayah.id
// lookups.
func ValidRegionPath(path string) bool {
	if path == "provinces.json" {
		return true
	}
	if strings.Contains(path, "..") || strings.Contains(path, "//") {
		return false
	}
	for _, prefix := range regionPrefixes {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return true
		}
	}
	return false
}

// UpstreamService fronts the weather and region sources with a shared
// response cache.
type UpstreamService struct {
	forecast ForecastSource
	regions  RegionSource
	cache    *ResponseCache
	logger   *zap.Logger

	mu            sync.RWMutex
	lastFetchTime time.Time
	successCount  int
	failureCount  int
}

func NewUpstreamService(forecast ForecastSource, regions RegionSource, cache *ResponseCache, logger *zap.Logger) *UpstreamService {
	return &UpstreamService{
		forecast: forecast,
		regions:  regions,
		cache:    cache,
		logger:   logger,
	}
}

// Forecast returns the raw BMKG payload, from cache when fresh.
func (s *UpstreamService) Forecast(ctx context.Context) ([]byte, error) {
	if cached, ok := s.cache.Get(forecastCacheKey); ok {
		s.logger.Debug("Cache hit for forecast")
		return cached, nil
	}
	return s.RefreshForecast(ctx)
}

// RefreshForecast always queries BMKG and replaces the cached payload.
func (s *UpstreamService) RefreshForecast(ctx context.Context) ([]byte, error) {
	data, err := s.forecast.GetForecastRaw(ctx)
	s.record(err)
	if err != nil {
		return nil, err
	}
	s.cache.Set(forecastCacheKey, data)
	return data, nil
}

// ForecastPayload decodes the (possibly cached) BMKG payload.
func (s *UpstreamService) ForecastPayload(ctx context.Context) (*models.BMKGForecast, error) {
	data, err := s.Forecast(ctx)
	if err != nil {
		return nil, err
	}
	return client.DecodeForecast(data)
}

// Region returns the wilayah.id payload for an already validated path.
func (s *UpstreamService) Region(ctx context.Context, path string) ([]byte, error) {
	key := "wilayah:" + path
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	data, err := s.regions.GetRaw(ctx, path)
	s.record(err)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, data)
	return data, nil
}

func (s *UpstreamService) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastFetchTime = time.Now()
	if err != nil {
		s.failureCount++
		return
	}
	s.successCount++
}

func (s *UpstreamService) GetLastFetchTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetchTime
}

func (s *UpstreamService) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"last_fetch_time": s.lastFetchTime,
		"success_count":   s.successCount,
		"failure_count":   s.failureCount,
		"cache_stats":     s.cache.GetStats(),
	}

	breakers := map[string]string{}
	if r, ok := s.forecast.(breakerReporter); ok {
		breakers["bmkg"] = r.BreakerState()
	}
	if r, ok := s.regions.(breakerReporter); ok {
		breakers["wilayah"] = r.BreakerState()
	}
	stats["circuit_breakers"] = breakers

	return stats
}
