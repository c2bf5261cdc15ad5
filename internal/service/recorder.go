package service

import (
	"context"
	"errors"

	"rental-gateway/internal/domain"
)

// RecorderFunc adapts a plain function, such as a repository's Create or a
// publisher's PublishFailure, to FailureRecorder.
type RecorderFunc func(ctx context.Context, failure *domain.BestEffortFailure) error

func (f RecorderFunc) Record(ctx context.Context, failure *domain.BestEffortFailure) error {
	return f(ctx, failure)
}

type multiRecorder []FailureRecorder

// MultiRecorder fans a failure out to every recorder. All recorders are
// invoked even when one fails; their errors are joined.
func MultiRecorder(recorders ...FailureRecorder) FailureRecorder {
	var out multiRecorder
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multiRecorder) Record(ctx context.Context, failure *domain.BestEffortFailure) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, failure); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
