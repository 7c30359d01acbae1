// Package stats derives summary statistics over stored evaluations.
package stats

import (
	"context"
	"fmt"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/scoring"
)

// avgPlaces is the number of decimals kept in AvgScore.
const avgPlaces = 1

// Source yields the percentage of every stored evaluation.
type Source interface {
	Percentages(ctx context.Context) ([]int, error)
}

// Summarize returns the count and the mean percentage rounded to one decimal
// (half away from zero). An empty input yields {0, 0}.
func Summarize(percentages []int) model.Stats {
	if len(percentages) == 0 {
		return model.Stats{}
	}
	sum := 0
	for _, p := range percentages {
		sum += p
	}
	mean := float64(sum) / float64(len(percentages))
	return model.Stats{
		Total:    len(percentages),
		AvgScore: scoring.RoundHalfAwayFromZero(mean, avgPlaces),
	}
}

// Reporter computes stats from its source on every call. Nothing is cached.
type Reporter struct {
	src Source
}

// NewReporter creates a reporter reading from src.
func NewReporter(src Source) *Reporter {
	return &Reporter{src: src}
}

// Stats reads all percentages and summarizes them.
func (r *Reporter) Stats(ctx context.Context) (model.Stats, error) {
	ps, err := r.src.Percentages(ctx)
	if err != nil {
		return model.Stats{}, fmt.Errorf("read percentages: %w", err)
	}
	return Summarize(ps), nil
}
