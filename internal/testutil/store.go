package testutil

import (
	"context"
	"slices"
	"sync"

	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/samber/lo"
)

// FilterFunc reports whether item passes filter for the caller in ctx
type FilterFunc[T any] func(ctx context.Context, item T, filter interface{}) bool

// SortFunc orders items, following slices.SortFunc
type SortFunc[T any] func(a, b T) int

// InMemoryStore is a mutex guarded map keyed by id. Repository fakes embed it and add
// tenant scoping and copying on top.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{items: make(map[string]T)}
}

func notFound(id string) error {
	return ierr.NewErrorf("item %s not found", id).
		WithHint("Item not found").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryStore[T]) Create(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; ok {
		return ierr.NewErrorf("item %s already exists", id).
			WithHint("An item with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return item, notFound(id)
	}
	return item, nil
}

func (s *InMemoryStore[T]) matching(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) []T {
	return lo.Filter(lo.Values(s.items), func(item T, _ int) bool {
		return filterFn == nil || filterFn(ctx, item, filter)
	})
}

// List returns matching items sorted by sortFn, windowed by filter when it is a
// limited types.BaseFilter
func (s *InMemoryStore[T]) List(ctx context.Context, filter interface{}, filterFn FilterFunc[T], sortFn SortFunc[T]) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.matching(ctx, filter, filterFn)
	if sortFn != nil {
		slices.SortStableFunc(result, sortFn)
	}

	f, ok := filter.(types.BaseFilter)
	if !ok || f.IsUnlimited() {
		return result, nil
	}
	return lo.Subset(result, f.GetOffset(), uint(f.GetLimit())), nil
}

func (s *InMemoryStore[T]) Count(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(ctx, filter, filterFn)), nil
}

func (s *InMemoryStore[T]) Update(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	delete(s.items, id)
	return nil
}

// Clear empties the store between tests
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
}
