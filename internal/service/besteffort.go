package service

import (
	"context"
	"time"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/logger"

	"github.com/google/uuid"
)

// bestEffortCall describes one mutating downstream call whose failure does not
// alter the workflow.
type bestEffortCall struct {
	operation domain.Operation
	step      domain.Step
	rentalUID uuid.UUID
	targetUID uuid.UUID
}

// bestEffort is the policy for unchecked calls: run once, never retry, never
// surface the error. A failure is logged and handed to the recorder so that
// diverged stores can be found later.
type bestEffort struct {
	recorder FailureRecorder
	timeout  time.Duration
	now      func() time.Time
}

// recordTimeout bounds a single recorder call.
const recordTimeout = 3 * time.Second

func newBestEffort(recorder FailureRecorder) *bestEffort {
	if recorder == nil {
		recorder = MultiRecorder()
	}
	return &bestEffort{recorder: recorder, timeout: recordTimeout, now: time.Now}
}

// run executes fn and reports whether it succeeded.
func (b *bestEffort) run(ctx context.Context, call bestEffortCall, fn func(context.Context) error) bool {
	err := fn(ctx)
	if err == nil {
		return true
	}
	b.record(ctx, call, err)
	return false
}

// record logs and stores a failed call. Recording problems are logged only
// and never hold the workflow longer than the record timeout.
func (b *bestEffort) record(ctx context.Context, call bestEffortCall, cause error) {
	logger.BestEffortFailed(ctx, string(call.operation), string(call.step), cause,
		"rental_uid", call.rentalUID, "target_uid", call.targetUID)

	failure := &domain.BestEffortFailure{
		ID:        uuid.New(),
		Operation: call.operation,
		Step:      call.step,
		RentalUID: call.rentalUID,
		TargetUID: call.targetUID,
		Error:     cause.Error(),
		CreatedAt: b.now().UTC(),
	}
	recordCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.recorder.Record(recordCtx, failure); err != nil {
		logger.ErrorContext(ctx, "Failed to record best-effort failure",
			"failure_id", failure.ID, "step", failure.Step, "error", err)
	}
}
