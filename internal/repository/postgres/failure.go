package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/logger"
	"rental-gateway/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type failureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) repository.FailureRepository {
	return &failureRepository{db: db}
}

// Create appends a failure. Recording the same failure twice is a no-op.
func (r *failureRepository) Create(ctx context.Context, f *domain.BestEffortFailure) error {
	logger.EnterMethod("failureRepository.Create", "id", f.ID, "step", f.Step, "rental_uid", f.RentalUID)

	query := `INSERT INTO best_effort_failures (id, operation, step, rental_uid, target_uid, error, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	logger.DatabaseCall("INSERT", "best_effort_failures", "id", f.ID)

	result, err := r.db.ExecContext(ctx, query,
		f.ID, string(f.Operation), string(f.Step), f.RentalUID, f.TargetUID, f.Error, f.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		logger.Debug("Failure already recorded", "id", f.ID)
		logger.ExitMethod("failureRepository.Create", "id", f.ID, "duplicate", true)
		return nil
	}

	var rows int64
	if err == nil {
		rows, _ = result.RowsAffected()
	}
	logger.DatabaseResult("INSERT", rows, err, "id", f.ID)
	if err != nil {
		logger.ExitMethodWithError("failureRepository.Create", err, "id", f.ID)
		return fmt.Errorf("failed to insert failure %s: %w", f.ID, err)
	}
	logger.ExitMethod("failureRepository.Create", "id", f.ID)
	return nil
}

// ListUnresolved returns the oldest unresolved failures first.
func (r *failureRepository) ListUnresolved(ctx context.Context, limit int) ([]domain.BestEffortFailure, error) {
	query := `SELECT id, operation, step, rental_uid, target_uid, error, created_at, resolved_at
	          FROM best_effort_failures WHERE resolved_at IS NULL ORDER BY created_at ASC LIMIT $1`
	logger.DatabaseCall("SELECT", "best_effort_failures", "limit", limit)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, fmt.Errorf("failed to list unresolved failures: %w", err)
	}
	defer rows.Close()

	var failures []domain.BestEffortFailure
	for rows.Next() {
		var (
			f          domain.BestEffortFailure
			operation  string
			step       string
			resolvedAt sql.NullTime
		)
		if err := rows.Scan(&f.ID, &operation, &step, &f.RentalUID, &f.TargetUID, &f.Error, &f.CreatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		f.Operation = domain.Operation(operation)
		f.Step = domain.Step(step)
		if resolvedAt.Valid {
			t := resolvedAt.Time
			f.ResolvedAt = &t
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate failures: %w", err)
	}
	logger.DatabaseResult("SELECT", int64(len(failures)), nil)
	return failures, nil
}

func (r *failureRepository) MarkResolved(ctx context.Context, id uuid.UUID, resolvedAt time.Time) error {
	query := `UPDATE best_effort_failures SET resolved_at = $2 WHERE id = $1 AND resolved_at IS NULL`
	logger.DatabaseCall("UPDATE", "best_effort_failures", "id", id)

	result, err := r.db.ExecContext(ctx, query, id, resolvedAt)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "id", id)
		return fmt.Errorf("failed to resolve failure %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "id", id)
	if rows == 0 {
		return fmt.Errorf("%w: unresolved failure %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *failureRepository) CountUnresolved(ctx context.Context) (map[domain.Step]int, error) {
	query := `SELECT step, count(*) FROM best_effort_failures WHERE resolved_at IS NULL GROUP BY step`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count unresolved failures: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Step]int)
	for rows.Next() {
		var (
			step  string
			count int
		)
		if err := rows.Scan(&step, &count); err != nil {
			return nil, err
		}
		counts[domain.Step(step)] = count
	}
	return counts, rows.Err()
}
