package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/pkg/metrics"
)

const driverMemory = "memory"

// MemoryStore is an in-process Store. Records are copied on the way in and
// on the way out, so callers never hold references into the collection.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.Evaluation // insertion order
	byID    map[string]int
	opts    options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]int),
		opts: applyOptions(opts),
	}
}

// Create stores c under a fresh id.
func (s *MemoryStore) Create(ctx context.Context, c model.Candidate) (model.Evaluation, error) {
	start := time.Now()
	defer observe("create", driverMemory, start)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.opts.newID()
	if _, dup := s.byID[id]; dup {
		metrics.RecordStoreError("create", driverMemory)
		return model.Evaluation{}, fmt.Errorf("%w: duplicate id %q", ErrUnavailable, id)
	}
	e := c.Evaluation(id, s.opts.stamp())
	s.byID[id] = len(s.records)
	s.records = append(s.records, e)
	return e.Clone(), nil
}

// Get returns a copy of the evaluation with id.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Evaluation, error) {
	start := time.Now()
	defer observe("get", driverMemory, start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return model.Evaluation{}, ErrNotFound
	}
	return s.records[i].Clone(), nil
}

// List returns copies newest first; records created at the same instant are
// ordered by insertion, latest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]model.Evaluation, error) {
	start := time.Now()
	defer observe("list", driverMemory, start)

	s.mu.RLock()
	out := make([]model.Evaluation, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i].Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Percentages returns every stored percentage.
func (s *MemoryStore) Percentages(ctx context.Context) ([]int, error) {
	start := time.Now()
	defer observe("percentages", driverMemory, start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	ps := make([]int, len(s.records))
	for i, e := range s.records {
		ps[i] = e.Percentage
	}
	return ps, nil
}

// Count returns the number of stored evaluations.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func observe(op, driver string, start time.Time) {
	metrics.RecordStoreOperation(op, driver, float64(time.Since(start).Microseconds())/1000)
}
