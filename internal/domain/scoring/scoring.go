// Package scoring computes aggregate evaluation scores from validated trait scores.
package scoring

import (
	"math"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
)

// Band thresholds in percent.
const (
	strongThreshold = 70
	fairThreshold   = 50
	percentScale    = 100
)

// Result is the aggregate of one evaluation's trait scores.
type Result struct {
	TotalScore int
	Percentage int
}

// Aggregate sums scores over the rubric keys in declaration order and
// normalizes the total against rubric.MaxScore.
//
// The scores must already be validated against the rubric; keys outside the
// rubric are ignored.
func Aggregate(scores model.Scores) Result {
	total := 0
	for _, key := range rubric.Keys() {
		total += scores[key]
	}
	return Result{
		TotalScore: total,
		Percentage: Percentage(total, rubric.MaxScore),
	}
}

// Percentage returns round(total / max * 100) using round-half-away-from-zero.
// It is computed in integer arithmetic so that exact halves are never lost to
// floating point error. max must be positive.
func Percentage(total, max int) int {
	num := total * percentScale
	if num >= 0 {
		return (2*num + max) / (2 * max)
	}
	return -((-2*num + max) / (2 * max))
}

// RoundHalfAwayFromZero rounds x to the given number of decimal places.
func RoundHalfAwayFromZero(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// Band is a coarse quality grade derived from a percentage.
type Band string

// Bands, from best to worst.
const (
	BandStrong Band = "strong"
	BandFair   Band = "fair"
	BandWeak   Band = "weak"
)

// Classify maps a percentage to its band.
func Classify(percentage int) Band {
	switch {
	case percentage >= strongThreshold:
		return BandStrong
	case percentage >= fairThreshold:
		return BandFair
	default:
		return BandWeak
	}
}
