package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-provision/core"
)

type stubPlanBindingStore struct {
	mu          sync.Mutex
	bindings    map[string]core.PlanBinding
	getCalls    int
	upsertCalls int
	getErr      error
}

func newStubPlanBindingStore() *stubPlanBindingStore {
	return &stubPlanBindingStore{bindings: map[string]core.PlanBinding{}}
}

func (s *stubPlanBindingStore) Upsert(_ context.Context, in core.UpsertPlanBindingInput) (core.PlanBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	binding := core.PlanBinding{
		ID:          "bind_" + in.ProductID,
		ProductID:   in.ProductID,
		PlanID:      in.PlanID,
		ProductName: in.ProductName,
	}
	s.bindings[in.ProductID] = binding
	return binding, nil
}

func (s *stubPlanBindingStore) GetByProductID(_ context.Context, productID string) (core.PlanBinding, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return core.PlanBinding{}, false, s.getErr
	}
	binding, ok := s.bindings[productID]
	return binding, ok, nil
}

func (s *stubPlanBindingStore) Delete(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, productID)
	return nil
}

func (s *stubPlanBindingStore) List(context.Context) ([]core.PlanBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.PlanBinding, 0, len(s.bindings))
	for _, binding := range s.bindings {
		out = append(out, binding)
	}
	return out, nil
}

func TestCachedPlanBindingStore_Get_MissFetchThenHit(t *testing.T) {
	cacheService := newTestBindingCacheService(t)
	base := newStubPlanBindingStore()
	base.bindings["prod_cdn"] = core.PlanBinding{ID: "bind_1", ProductID: "prod_cdn", PlanID: 3}

	store, err := NewCachedPlanBindingStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached binding store: %v", err)
	}

	binding, found, err := store.GetByProductID(context.Background(), "prod_cdn")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if !found || binding.PlanID != 3 {
		t.Fatalf("unexpected first result: %#v found=%v", binding, found)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected first get to fetch base store once, got %d", base.getCalls)
	}

	if _, _, err := store.GetByProductID(context.Background(), "prod_cdn"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected second get to be cache hit, base get calls=%d", base.getCalls)
	}
}

func TestCachedPlanBindingStore_AbsenceIsCachedToo(t *testing.T) {
	cacheService := newTestBindingCacheService(t)
	base := newStubPlanBindingStore()

	store, err := NewCachedPlanBindingStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached binding store: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, found, err := store.GetByProductID(context.Background(), "prod_missing")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if found {
			t.Fatalf("get %d: expected absence", i)
		}
	}
	if base.getCalls != 1 {
		t.Fatalf("expected absence to be served from cache, base get calls=%d", base.getCalls)
	}
}

func TestCachedPlanBindingStore_UpsertInvalidatesCachedKey(t *testing.T) {
	cacheService := newTestBindingCacheService(t)
	base := newStubPlanBindingStore()
	base.bindings["prod_cdn"] = core.PlanBinding{ID: "bind_1", ProductID: "prod_cdn", PlanID: 3}

	store, err := NewCachedPlanBindingStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached binding store: %v", err)
	}

	if _, _, err := store.GetByProductID(context.Background(), "prod_cdn"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if _, err := store.Upsert(context.Background(), core.UpsertPlanBindingInput{
		ProductID: "prod_cdn",
		PlanID:    7,
	}); err != nil {
		t.Fatalf("upsert through cached store: %v", err)
	}
	if base.upsertCalls != 1 {
		t.Fatalf("expected base upsert call count=1, got %d", base.upsertCalls)
	}

	binding, found, err := store.GetByProductID(context.Background(), "prod_cdn")
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if base.getCalls != 2 {
		t.Fatalf("expected invalidated key to force second base read, got %d", base.getCalls)
	}
	if !found || binding.PlanID != 7 {
		t.Fatalf("expected refreshed binding plan=7, got %#v", binding)
	}
}

func TestCachedPlanBindingStore_DeleteInvalidatesCachedKey(t *testing.T) {
	cacheService := newTestBindingCacheService(t)
	base := newStubPlanBindingStore()
	base.bindings["prod_cdn"] = core.PlanBinding{ID: "bind_1", ProductID: "prod_cdn", PlanID: 3}

	store, err := NewCachedPlanBindingStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached binding store: %v", err)
	}

	if _, _, err := store.GetByProductID(context.Background(), "prod_cdn"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := store.Delete(context.Background(), "prod_cdn"); err != nil {
		t.Fatalf("delete through cached store: %v", err)
	}

	_, found, err := store.GetByProductID(context.Background(), "prod_cdn")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if found {
		t.Fatalf("expected binding gone after delete")
	}
}

func TestPlanBindingCacheKey_Contract(t *testing.T) {
	key, err := PlanBindingCacheKey("Prod/Alpha Team")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}
	const expected = "go-provision::plan_binding::v1::Prod%2FAlpha%20Team"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}

	if _, err := PlanBindingCacheKey("  "); err == nil {
		t.Fatalf("expected error for blank product id")
	}
}

func TestCachedPlanBindingStore_PropagatesBaseErrors(t *testing.T) {
	cacheService := newTestBindingCacheService(t)
	base := newStubPlanBindingStore()
	baseErr := errors.New("connection reset")
	base.getErr = baseErr

	store, err := NewCachedPlanBindingStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached binding store: %v", err)
	}

	if _, _, err := store.GetByProductID(context.Background(), "prod_cdn"); !errors.Is(err, baseErr) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func newTestBindingCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
