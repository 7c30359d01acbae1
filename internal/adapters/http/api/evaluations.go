package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/pkg/logger"
)

// maxBodyBytes bounds a submission body.
const maxBodyBytes = 1 << 20

// EvaluationDependencies defines what the collection endpoints need.
type EvaluationDependencies interface {
	Submit(ctx context.Context, in model.Input) (model.Evaluation, error)
	List(ctx context.Context, limit int) ([]model.Evaluation, error)
}

// EvaluationsHandler handles the evaluation collection.
type EvaluationsHandler struct {
	deps      EvaluationDependencies
	listLimit int
	maxLimit  int
	logger    logger.Logger
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps EvaluationDependencies, listLimit, maxLimit int, l logger.Logger) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps, listLimit: listLimit, maxLimit: maxLimit, logger: l}
}

// HandleCreate handles POST /api/evaluations requests.
func (h *EvaluationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_evaluation"

	in, err := decodeInput(w, r)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}

	e, err := h.deps.Submit(r.Context(), in)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/api/evaluations/"+e.ID)
	writeJSON(w, http.StatusCreated, e)
}

// HandleList handles GET /api/evaluations requests.
func (h *EvaluationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_evaluations"

	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeFailure(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}

	list, err := h.deps.List(r.Context(), limit)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	if list == nil {
		list = []model.Evaluation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *EvaluationsHandler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return h.listLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	if n > h.maxLimit {
		n = h.maxLimit
	}
	return n, nil
}

// decodeInput reads one JSON object. Numbers are kept as json.Number so the
// validator sees exactly what was sent.
func decodeInput(w http.ResponseWriter, r *http.Request) (model.Input, error) {
	var in model.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return in, errors.New("request body is empty")
		}
		return in, fmt.Errorf("malformed json: %w", err)
	}
	if dec.More() {
		return in, errors.New("request body must contain a single json object")
	}
	return in, nil
}
