package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-gateway/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMultiRecorder(t *testing.T) {
	ctx := context.Background()
	failure := &domain.BestEffortFailure{ID: uuid.New(), Step: domain.StepCarAvailable}

	t.Run("Fans out to every recorder", func(t *testing.T) {
		var got []string
		journal := RecorderFunc(func(context.Context, *domain.BestEffortFailure) error {
			got = append(got, "journal")
			return errors.New("journal down")
		})
		stream := RecorderFunc(func(context.Context, *domain.BestEffortFailure) error {
			got = append(got, "stream")
			return nil
		})

		err := MultiRecorder(journal, nil, stream).Record(ctx, failure)
		assert.EqualError(t, err, "journal down")
		assert.Equal(t, []string{"journal", "stream"}, got)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.NoError(t, MultiRecorder().Record(ctx, failure))
	})
}

func TestBestEffort(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, time.January, 2, 10, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	call := bestEffortCall{
		operation: domain.OperationCancel,
		step:      domain.StepPaymentCancel,
		rentalUID: uuid.New(),
		targetUID: uuid.New(),
	}

	t.Run("Success records nothing", func(t *testing.T) {
		recorder := new(MockFailureRecorder)
		policy := newBestEffort(recorder)

		ok := policy.run(ctx, call, func(context.Context) error { return nil })
		assert.True(t, ok)
		recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("Failure is recorded once", func(t *testing.T) {
		recorder := new(MockFailureRecorder)
		recorder.On("Record", mock.Anything, mock.AnythingOfType("*domain.BestEffortFailure")).Return(nil)
		policy := newBestEffort(recorder)
		policy.now = func() time.Time { return fixed }

		attempts := 0
		ok := policy.run(ctx, call, func(context.Context) error {
			attempts++
			return errors.New("payment service: 503")
		})
		assert.False(t, ok)
		assert.Equal(t, 1, attempts, "no retry")

		require.Len(t, recorder.Calls, 1)
		failure := recorder.Calls[0].Arguments.Get(1).(*domain.BestEffortFailure)
		assert.NotEqual(t, uuid.Nil, failure.ID)
		assert.Equal(t, domain.OperationCancel, failure.Operation)
		assert.Equal(t, domain.StepPaymentCancel, failure.Step)
		assert.Equal(t, call.rentalUID, failure.RentalUID)
		assert.Equal(t, call.targetUID, failure.TargetUID)
		assert.Equal(t, "payment service: 503", failure.Error)
		assert.Equal(t, time.UTC, failure.CreatedAt.Location())
		assert.True(t, fixed.Equal(failure.CreatedAt))
		assert.Nil(t, failure.ResolvedAt)
	})

	t.Run("Stalled recorder is cut off", func(t *testing.T) {
		var hadDeadline bool
		stalled := RecorderFunc(func(ctx context.Context, _ *domain.BestEffortFailure) error {
			_, hadDeadline = ctx.Deadline()
			<-ctx.Done()
			return ctx.Err()
		})
		policy := newBestEffort(stalled)
		policy.timeout = 50 * time.Millisecond

		done := make(chan bool, 1)
		go func() {
			done <- policy.run(context.WithoutCancel(ctx), call, func(context.Context) error { return errors.New("x") })
		}()

		select {
		case ok := <-done:
			assert.False(t, ok)
			assert.True(t, hadDeadline)
		case <-time.After(2 * time.Second):
			t.Fatal("run blocked on a stalled recorder")
		}
	})

	t.Run("Nil recorder", func(t *testing.T) {
		policy := newBestEffort(nil)
		assert.False(t, policy.run(ctx, call, func(context.Context) error { return errors.New("x") }))
	})
}
