// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/breedgrade/internal/adapters/repository"
	service "github.com/okian/breedgrade/internal/app"
	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
	"github.com/okian/breedgrade/internal/domain/validation"
	"github.com/okian/breedgrade/pkg/logger"
)

// Default list sizes for GET /api/evaluations.
const (
	defaultListLimit = 50
	defaultMaxLimit  = 500
	retryAfter       = "1"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Submit(ctx context.Context, in model.Input) (model.Evaluation, error)
	Get(ctx context.Context, id string) (model.Evaluation, error)
	List(ctx context.Context, limit int) ([]model.Evaluation, error)
	Stats(ctx context.Context) (model.Stats, error)
	Rubric() []rubric.Trait
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	rubricHandler      *RubricHandler
	statsHandler       *StatsHandler
	evaluationsHandler *EvaluationsHandler
	evaluationHandler  *EvaluationHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	listLimit int
	maxLimit  int
	logger    logger.Logger
}

// WithListLimits sets the default and maximum page size of the list endpoint.
func WithListLimits(def, maxLimit int) ServerOption {
	return func(c *serverConfig) {
		if maxLimit > 0 {
			c.maxLimit = maxLimit
		}
		if def > 0 {
			c.listLimit = def
		}
		if c.listLimit > c.maxLimit {
			c.listLimit = c.maxLimit
		}
	}
}

// WithLogger sets the logger used for unexpected failures.
func WithLogger(l logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	cfg := serverConfig{listLimit: defaultListLimit, maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Named("api")
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		rubricHandler:      NewRubricHandler(deps),
		statsHandler:       NewStatsHandler(deps, cfg.logger),
		evaluationsHandler: NewEvaluationsHandler(deps, cfg.listLimit, cfg.maxLimit, cfg.logger),
		evaluationHandler:  NewEvaluationHandler(deps, cfg.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /api/rubric", MetricsMiddleware(s.rubricHandler.HandleRubric, "rubric"))
	mux.HandleFunc("GET /api/evaluations/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /api/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleCreate, "evaluations"))
	mux.HandleFunc("GET /api/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleList, "evaluations"))
	mux.HandleFunc("GET /api/evaluations/{id}", MetricsMiddleware(s.evaluationHandler.HandleGet, "evaluation"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
}

type errorResponse struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status code and writes it. Errors without a
// known kind are logged and reported as 500 without their text.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:       "validation_failed",
			Message:    verr.Error(),
			Violations: verr.Violations,
		})
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "invalid_id", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrUnavailable), errors.Is(err, service.ErrNotStarted):
		log.Warn(ctx, "storage unavailable", logger.Error(err))
		w.Header().Set("Retry-After", retryAfter)
		writeError(w, http.StatusServiceUnavailable, "unavailable", nil)
	default:
		op := "api"
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Op != "" {
			op = apiErr.Op
		}
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
}
