package port

import (
	"context"

	"github.com/google/uuid"

	"doccompare/internal/domain"
)

// ComparisonRunRepository persists the summaries of finished comparisons.
// Every read is scoped to the owner that created the run.
type ComparisonRunRepository interface {
	Create(ctx context.Context, run *domain.ComparisonRun) error
	GetByID(ctx context.Context, owner string, id uuid.UUID) (*domain.ComparisonRun, error)
	ListByOwner(ctx context.Context, owner string, offset, limit int) ([]domain.ComparisonRun, int, error)
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}
