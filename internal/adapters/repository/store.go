// Package repository persists evaluation records.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/okian/breedgrade/internal/domain/model"
)

// Store owns the canonical collection of evaluations. It is append-only.
type Store interface {
	// Create assigns an id and creation time to c and persists it atomically.
	// On error nothing is stored; persistence failures match ErrUnavailable.
	Create(ctx context.Context, c model.Candidate) (model.Evaluation, error)

	// Get returns the evaluation with id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Evaluation, error)

	// List returns evaluations newest first. limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]model.Evaluation, error)

	// Percentages returns the percentage of every stored evaluation.
	Percentages(ctx context.Context) ([]int, error)

	// Count returns the number of stored evaluations.
	Count(ctx context.Context) (int, error)

	Close() error
}

// ValidID reports whether id has the shape of an id this package assigns.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
