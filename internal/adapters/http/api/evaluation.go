package api

import (
	"context"
	"net/http"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/pkg/logger"
)

// EvaluationGetter reads one evaluation.
type EvaluationGetter interface {
	Get(ctx context.Context, id string) (model.Evaluation, error)
}

// EvaluationHandler handles single evaluation requests.
type EvaluationHandler struct {
	deps   EvaluationGetter
	logger logger.Logger
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(deps EvaluationGetter, l logger.Logger) *EvaluationHandler {
	return &EvaluationHandler{deps: deps, logger: l}
}

// HandleGet handles GET /api/evaluations/{id} requests.
func (h *EvaluationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_evaluation"
	e, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, e)
}
