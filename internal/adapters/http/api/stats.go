// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/pkg/logger"
)

// StatsProvider returns the evaluation summary.
type StatsProvider interface {
	Stats(ctx context.Context) (model.Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	logger        logger.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, l logger.Logger) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, logger: l}
}

// HandleStats handles GET /api/evaluations/stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	s, err := h.statsProvider.Stats(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}
