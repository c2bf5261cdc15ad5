package jobs

import (
	"context"
	"errors"
	"fmt"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/downstream"
	"rental-gateway/internal/logger"

	"github.com/google/uuid"
)

// reconcileSummary counts the outcome of one reconciliation pass.
type reconcileSummary struct {
	Checked  int
	Resolved int
	Pending  int
	Errors   int
}

// ReconcileFailures checks unresolved journal entries against the current
// state of the downstream services and marks converged ones as resolved.
// It only reads from downstream services; a diverged entry stays pending for
// an operator.
func (jr *JobRunner) ReconcileFailures() {
	jr.runWithRecovery("ReconcileFailures", func() {
		if jr.failures == nil {
			logger.Info("Failure journal disabled, skipping reconciliation")
			return
		}
		ctx := context.Background()

		summary, err := jr.reconcileFailures(ctx)
		if err != nil {
			logger.Error("Failed to reconcile best-effort failures", "error", err)
			return
		}
		logger.Info("Reconciled best-effort failures",
			"checked", summary.Checked,
			"resolved", summary.Resolved,
			"pending", summary.Pending,
			"errors", summary.Errors)

		backlog, err := jr.failures.CountUnresolved(ctx)
		if err != nil {
			logger.Error("Failed to count unresolved failures", "error", err)
			return
		}
		for step, count := range backlog {
			logger.Info("Unresolved best-effort failures", "step", step, "count", count)
		}
	})
}

func (jr *JobRunner) reconcileFailures(ctx context.Context) (reconcileSummary, error) {
	var summary reconcileSummary

	failures, err := jr.failures.ListUnresolved(ctx, jr.config.Scheduler.ReconcileBatchSize)
	if err != nil {
		return summary, err
	}

	check := &convergenceCheck{clients: jr.clients}
	for _, f := range failures {
		summary.Checked++

		converged, err := check.converged(ctx, f)
		if err != nil {
			summary.Errors++
			logger.Warn("Could not check best-effort failure",
				"failure_id", f.ID, "step", f.Step, "rental_uid", f.RentalUID, "error", err)
			continue
		}
		if !converged {
			summary.Pending++
			logger.Debug("Best-effort failure still diverged",
				"failure_id", f.ID, "step", f.Step, "target_uid", f.TargetUID)
			continue
		}

		if err := jr.failures.MarkResolved(ctx, f.ID, jr.now().UTC()); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Resolved concurrently by another runner.
				continue
			}
			summary.Errors++
			logger.Error("Failed to mark failure resolved", "failure_id", f.ID, "error", err)
			continue
		}
		summary.Resolved++
	}
	return summary, nil
}

// convergenceCheck answers, per failed step, whether the store the call
// addressed has since reached the state the call intended. The payment list
// is fetched at most once per pass.
type convergenceCheck struct {
	clients  *Clients
	payments map[uuid.UUID]domain.Payment
}

func (c *convergenceCheck) converged(ctx context.Context, f domain.BestEffortFailure) (bool, error) {
	switch f.Step {
	case domain.StepCarUnavailable:
		car, err := c.clients.Inventory.GetCar(ctx, f.TargetUID)
		if err != nil {
			return false, err
		}
		if !car.Availability {
			return true, nil
		}
		// An available car is correct once the reservation no longer holds it.
		rental, err := c.clients.Rentals.GetRental(ctx, f.RentalUID)
		if errors.Is(err, downstream.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		return rental.Status.Terminal(), nil

	case domain.StepCarAvailable:
		car, err := c.clients.Inventory.GetCar(ctx, f.TargetUID)
		if err != nil {
			return false, err
		}
		return car.Availability, nil

	case domain.StepRentalCreate:
		_, err := c.clients.Rentals.GetRental(ctx, f.TargetUID)
		if errors.Is(err, downstream.ErrNotFound) {
			return false, nil
		}
		return err == nil, err

	case domain.StepRentalFinish:
		return c.rentalHasStatus(ctx, f.TargetUID, domain.RentalStatusFinished)

	case domain.StepRentalCancel:
		return c.rentalHasStatus(ctx, f.TargetUID, domain.RentalStatusCanceled)

	case domain.StepPaymentCreate:
		_, ok, err := c.payment(ctx, f.TargetUID)
		return ok, err

	case domain.StepPaymentCancel:
		payment, ok, err := c.payment(ctx, f.TargetUID)
		if err != nil {
			return false, err
		}
		return ok && payment.Status == domain.PaymentStatusCanceled, nil
	}
	return false, fmt.Errorf("unknown step %q", f.Step)
}

func (c *convergenceCheck) rentalHasStatus(ctx context.Context, rentalUID uuid.UUID, status domain.RentalStatus) (bool, error) {
	rental, err := c.clients.Rentals.GetRental(ctx, rentalUID)
	if err != nil {
		return false, err
	}
	return rental.Status == status, nil
}

func (c *convergenceCheck) payment(ctx context.Context, paymentUID uuid.UUID) (domain.Payment, bool, error) {
	if c.payments == nil {
		list, err := c.clients.Payments.GetPayments(ctx)
		if err != nil {
			return domain.Payment{}, false, err
		}
		c.payments = make(map[uuid.UUID]domain.Payment, len(list))
		for _, p := range list {
			c.payments[p.PaymentUID] = p
		}
	}
	p, ok := c.payments[paymentUID]
	return p, ok, nil
}
