package analytics

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// dashboardCacheKey caches the compiled Dashboard JSON.
	dashboardCacheKey = "analytics:dashboard"
	dashboardCacheTTL = 5 * time.Minute
)

// Service compiles the admin dashboard, with a short-lived Redis cache in
// front of the aggregation queries. Cache failures are logged and the
// dashboard is computed anyway.
type Service struct {
	repo  Repository
	cache *redis.Client
}

// NewService accepts a nil cache; caching is then disabled.
func NewService(repo Repository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var d Dashboard
			if err := json.Unmarshal(raw, &d); err == nil {
				return d, nil
			}
		} else if err != redis.Nil {
			log.Printf("analytics cache read failed: %v", err)
		}
	}

	d, err := s.repo.Dashboard()
	if err != nil {
		return Dashboard{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(d); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				log.Printf("analytics cache write failed: %v", err)
			}
		}
	}
	return d, nil
}
