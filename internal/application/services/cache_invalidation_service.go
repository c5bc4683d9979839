package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/domain/providers"
)

// PropertyCachePattern matches every cached HTTP response under /api/properties.
const PropertyCachePattern = "http:cache:*properties*"

// CacheInvalidationService drops cached HTTP responses after writes
type CacheInvalidationService struct {
	cache providers.CacheProvider
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider) *CacheInvalidationService {
	return &CacheInvalidationService{cache: cache}
}

// InvalidatePropertyCaches removes cached property reads, listings and searches.
// A nil service or cache is a no-op.
func (s *CacheInvalidationService) InvalidatePropertyCaches(ctx context.Context) error {
	if s == nil || s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePattern(ctx, PropertyCachePattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", PropertyCachePattern, err)
	}
	log.Ctx(ctx).Debug().Str("pattern", PropertyCachePattern).Msg("Invalidated property caches")
	return nil
}
