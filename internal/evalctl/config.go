// Package evalctl implements the operator command line client for the
// evaluation API.
package evalctl

import (
	"time"

	"github.com/okian/breedgrade/internal/domain/model"
)

// Config holds settings shared by every subcommand.
type Config struct {
	BaseURL string        // Base URL of the service
	Timeout time.Duration // HTTP request timeout
	NoColor bool          // Disable coloured output
	Verbose bool          // Enable verbose logging
}

// SeedConfig holds settings for the seed subcommand.
type SeedConfig struct {
	Count   int   // Number of evaluations to submit
	Workers int   // Number of concurrent submitters
	Seed    int64 // Generator seed; the same seed yields the same evaluations
}

// SeedReport summarizes a seed run.
type SeedReport struct {
	Generated  int
	Submitted  int
	Successful int
	Rejected   int
	Failed     int

	Before model.Stats
	After  model.Stats

	// MeanChecked is false when the list endpoint could not return every
	// evaluation, so the mean was not recomputed.
	MeanChecked bool
	LocalMean   float64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
