package repository

import (
	"context"
	"time"

	"rental-gateway/internal/domain"

	"github.com/google/uuid"
)

// FailureRepository is the journal of best-effort calls that failed. Entries
// are only ever appended and later marked resolved; nothing replays them.
type FailureRepository interface {
	Create(ctx context.Context, failure *domain.BestEffortFailure) error
	ListUnresolved(ctx context.Context, limit int) ([]domain.BestEffortFailure, error)
	MarkResolved(ctx context.Context, id uuid.UUID, resolvedAt time.Time) error
	CountUnresolved(ctx context.Context) (map[domain.Step]int, error)
}
