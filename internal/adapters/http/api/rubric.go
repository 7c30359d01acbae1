package api

import (
	"net/http"

	"github.com/okian/breedgrade/internal/domain/rubric"
)

// RubricProvider lists the scoring traits.
type RubricProvider interface {
	Rubric() []rubric.Trait
}

// RubricHandler handles rubric requests.
type RubricHandler struct {
	provider RubricProvider
}

// NewRubricHandler creates a new rubric handler.
func NewRubricHandler(provider RubricProvider) *RubricHandler {
	return &RubricHandler{provider: provider}
}

type rubricResponse struct {
	Traits        []rubric.Trait `json:"traits"`
	MinTraitScore int            `json:"min_trait_score"`
	MaxTraitScore int            `json:"max_trait_score"`
	MaxScore      int            `json:"max_score"`
}

// HandleRubric handles GET /api/rubric requests.
func (h *RubricHandler) HandleRubric(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rubricResponse{
		Traits:        h.provider.Rubric(),
		MinTraitScore: rubric.MinTraitScore,
		MaxTraitScore: rubric.MaxTraitScore,
		MaxScore:      rubric.MaxScore,
	})
}
