// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/breedgrade/internal/adapters/repository"
	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
	"github.com/okian/breedgrade/internal/domain/stats"
	"github.com/okian/breedgrade/internal/domain/validation"
	"github.com/okian/breedgrade/pkg/logger"
	"github.com/okian/breedgrade/pkg/metrics"
)

// Service implements the API dependencies for evaluation intake and reporting.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	reporter *stats.Reporter

	// Configuration
	injected  repository.Store
	driver    repository.Driver
	dsn       string
	listLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses an already opened store. The service does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.injected = store
	}
}

// WithStoreDriver selects the store Start opens. An empty dsn uses the driver default.
func WithStoreDriver(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = repository.Driver(driver)
		}
		s.dsn = dsn
	}
}

// WithListLimit caps the number of evaluations List returns.
func WithListLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.listLimit = limit
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver: repository.DriverMemory,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting evaluation service...")

	store := s.injected
	if store == nil {
		opened, err := repository.Open(ctx, s.driver, s.dsn)
		if err != nil {
			return fmt.Errorf("open %s store: %w", s.driver, err)
		}
		store = opened
	}
	s.store = store
	s.reporter = stats.NewReporter(store)

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.String("driver", string(s.driver)),
		logger.Bool("injectedStore", s.injected != nil),
		logger.Int("listLimit", s.listLimit),
	)

	return nil
}

// Stop closes a store opened by Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping evaluation service...")

	if s.injected == nil && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "failed to close store", logger.Error(err))
		}
	}
	s.store = nil
	s.reporter = nil

	s.started = false
	s.logger.Info(context.Background(), "evaluation service stopped")
}

func (s *Service) current() (repository.Store, *stats.Reporter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.reporter, nil
}

// Submit validates in, derives its totals and stores it. Validation errors
// are returned unchanged and nothing is stored.
func (s *Service) Submit(ctx context.Context, in model.Input) (model.Evaluation, error) {
	store, _, err := s.current()
	if err != nil {
		return model.Evaluation{}, err
	}

	candidate, err := validation.Validate(in)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields() {
				metrics.RecordValidationFailure(f)
			}
			s.logger.Debug(ctx, "rejected evaluation",
				logger.Any("fields", verr.Fields()),
			)
		}
		return model.Evaluation{}, err
	}

	start := time.Now()
	e, err := store.Create(ctx, candidate)
	if err != nil {
		s.logger.Error(ctx, "failed to store evaluation",
			logger.String("dogName", candidate.DogName),
			logger.Error(err),
		)
		return model.Evaluation{}, err
	}

	metrics.RecordEvaluationCreated(e.Percentage)
	s.logger.Info(ctx, "evaluation stored",
		logger.String("id", e.ID),
		logger.String("dogName", e.DogName),
		logger.Int("totalScore", e.TotalScore),
		logger.Int("percentage", e.Percentage),
		logger.Duration("took", time.Since(start)),
	)
	return e, nil
}

// Get returns the evaluation with id. Ids that could never have been
// assigned fail with repository.ErrInvalidID.
func (s *Service) Get(ctx context.Context, id string) (model.Evaluation, error) {
	store, _, err := s.current()
	if err != nil {
		return model.Evaluation{}, err
	}
	if !repository.ValidID(id) {
		return model.Evaluation{}, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return store.Get(ctx, id)
}

// List returns up to limit evaluations, newest first. limit <= 0 asks for
// all of them; both are capped by WithListLimit when set.
func (s *Service) List(ctx context.Context, limit int) ([]model.Evaluation, error) {
	store, _, err := s.current()
	if err != nil {
		return nil, err
	}
	if s.listLimit > 0 && (limit <= 0 || limit > s.listLimit) {
		limit = s.listLimit
	}
	return store.List(ctx, limit)
}

// Stats returns the evaluation count and mean percentage.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	_, reporter, err := s.current()
	if err != nil {
		return model.Stats{}, err
	}
	return reporter.Stats(ctx)
}

// Rubric returns the scoring traits in order.
func (s *Service) Rubric() []rubric.Trait {
	return rubric.Traits()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":   s.started,
		"driver":    string(s.driver),
		"listLimit": s.listLimit,
	}

	if s.started {
		ctx := context.Background()
		total, err := s.store.Count(ctx)
		if err != nil {
			out["error"] = err.Error()
			return out
		}
		out["totalEvaluations"] = total
		metrics.UpdateEvaluationsTotal(total)

		summary, err := s.reporter.Stats(ctx)
		if err != nil {
			out["error"] = err.Error()
			return out
		}
		out["avgScore"] = summary.AvgScore
		metrics.UpdateAveragePercentage(summary.AvgScore)
	}

	return out
}
