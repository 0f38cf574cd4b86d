package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"doccompare/internal/domain"
	"doccompare/internal/port"
)

type comparisonRunRepo struct {
	db *sqlx.DB
}

// NewComparisonRunRepo creates a new PostgreSQL-backed ComparisonRunRepository.
func NewComparisonRunRepo(db *sqlx.DB) port.ComparisonRunRepository {
	return &comparisonRunRepo{db: db}
}

func (r *comparisonRunRepo) Create(ctx context.Context, run *domain.ComparisonRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	options := string(run.Options)
	if options == "" {
		options = "{}"
	}

	query := `INSERT INTO comparison_runs
		(id, owner, kind, left_name, right_name, options,
		 matched_count, unmatched_count, difference_count, status, error,
		 report_bucket, report_key, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Owner, run.Kind, run.LeftName, run.RightName, options,
		run.MatchedCount, run.UnmatchedCount, run.DifferenceCount, run.Status, run.Error,
		run.ReportBucket, run.ReportKey, run.DurationMS, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("comparisonRunRepo.Create: %w", err)
	}
	return nil
}

func (r *comparisonRunRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (*domain.ComparisonRun, error) {
	var run domain.ComparisonRun
	err := r.db.GetContext(ctx, &run,
		"SELECT * FROM comparison_runs WHERE id = $1 AND owner = $2", id, owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("comparisonRunRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *comparisonRunRepo) ListByOwner(ctx context.Context, owner string, offset, limit int) ([]domain.ComparisonRun, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM comparison_runs WHERE owner = $1", owner)
	if err != nil {
		return nil, 0, fmt.Errorf("comparisonRunRepo.ListByOwner count: %w", err)
	}

	var runs []domain.ComparisonRun
	err = r.db.SelectContext(ctx, &runs,
		`SELECT * FROM comparison_runs
		 WHERE owner = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		owner, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("comparisonRunRepo.ListByOwner: %w", err)
	}
	return runs, total, nil
}

func (r *comparisonRunRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM comparison_runs WHERE id = $1 AND owner = $2", id, owner)
	if err != nil {
		return fmt.Errorf("comparisonRunRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("comparisonRunRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
