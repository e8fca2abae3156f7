package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-provision/core"
)

const planBindingCacheKeyPrefix = "go-provision::plan_binding::v1"

// CachedPlanBindingStore layers a read-through cache over binding lookups.
// Binding resolution happens on every lifecycle event, so repeat reads come
// from cache; writes and deletes invalidate the affected key.
type CachedPlanBindingStore struct {
	base  core.PlanBindingStore
	cache repositorycache.CacheService
}

func NewCachedPlanBindingStore(
	base core.PlanBindingStore,
	cacheService repositorycache.CacheService,
) (*CachedPlanBindingStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base plan binding store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: plan binding cache service is required")
	}
	return &CachedPlanBindingStore{base: base, cache: cacheService}, nil
}

// PlanBindingCacheKey returns the deterministic cache key for one product's
// binding: go-provision::plan_binding::v1::<product_id>, the product id URL
// path escaped.
func PlanBindingCacheKey(productID string) (string, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return "", fmt.Errorf("sqlstore: product id is required")
	}
	return planBindingCacheKeyPrefix + "::" + url.PathEscape(productID), nil
}

type planBindingCacheEntry struct {
	Binding core.PlanBinding
	Found   bool
}

func (s *CachedPlanBindingStore) GetByProductID(ctx context.Context, productID string) (core.PlanBinding, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.PlanBinding{}, false, fmt.Errorf("sqlstore: cached plan binding store is not configured")
	}
	cacheKey, err := PlanBindingCacheKey(productID)
	if err != nil {
		return core.PlanBinding{}, false, err
	}

	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (planBindingCacheEntry, error) {
		binding, found, fetchErr := s.base.GetByProductID(ctx, productID)
		if fetchErr != nil {
			return planBindingCacheEntry{}, fetchErr
		}
		return planBindingCacheEntry{Binding: binding, Found: found}, nil
	})
	if err != nil {
		return core.PlanBinding{}, false, err
	}
	return entry.Binding, entry.Found, nil
}

func (s *CachedPlanBindingStore) Upsert(ctx context.Context, in core.UpsertPlanBindingInput) (core.PlanBinding, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.PlanBinding{}, fmt.Errorf("sqlstore: cached plan binding store is not configured")
	}
	binding, err := s.base.Upsert(ctx, in)
	if err != nil {
		return core.PlanBinding{}, err
	}
	if err := s.invalidate(ctx, in.ProductID); err != nil {
		return core.PlanBinding{}, err
	}
	return binding, nil
}

func (s *CachedPlanBindingStore) Delete(ctx context.Context, productID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached plan binding store is not configured")
	}
	if err := s.base.Delete(ctx, productID); err != nil {
		return err
	}
	return s.invalidate(ctx, productID)
}

func (s *CachedPlanBindingStore) List(ctx context.Context) ([]core.PlanBinding, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached plan binding store is not configured")
	}
	return s.base.List(ctx)
}

func (s *CachedPlanBindingStore) invalidate(ctx context.Context, productID string) error {
	cacheKey, err := PlanBindingCacheKey(productID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.PlanBindingStore = (*CachedPlanBindingStore)(nil)
