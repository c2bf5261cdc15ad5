package service

import (
	"context"
	"errors"
	"fmt"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/downstream"
	"rental-gateway/internal/logger"
	"rental-gateway/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type gatewayService struct {
	inventory downstream.InventoryClient
	rentals   downstream.RentalClient
	payments  downstream.PaymentClient
	policy    *bestEffort
}

func NewGatewayService(
	inventory downstream.InventoryClient,
	rentals downstream.RentalClient,
	payments downstream.PaymentClient,
	recorder FailureRecorder,
) GatewayService {
	return &gatewayService{
		inventory: inventory,
		rentals:   rentals,
		payments:  payments,
		policy:    newBestEffort(recorder),
	}
}

func (s *gatewayService) ListCars(ctx context.Context, page, size int, showAll bool) (*domain.CarsPage, error) {
	if page < 1 || size < 1 {
		return nil, fmt.Errorf("%w: page and size must be positive", domain.ErrInvalidRequest)
	}

	cars, err := s.inventory.ListCars(ctx, showAll)
	if err != nil {
		return nil, upstreamError("list cars", err)
	}
	return assembleCarsPage(page, size, cars), nil
}

func (s *gatewayService) ListRentals(ctx context.Context, username string) ([]domain.RentalView, error) {
	var (
		rentals  []domain.Rental
		cars     []domain.Car
		payments []domain.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Rentals stay enumerable when the rental service misbehaves: fall back to an empty list.
		list, err := s.rentals.ListRentals(gctx, username)
		if err != nil {
			logger.WarnContext(ctx, "Listing rentals failed, returning empty list", "username", username, "error", err)
			return nil
		}
		rentals = list
		return nil
	})
	g.Go(func() error {
		var err error
		cars, err = s.inventory.ListCars(gctx, true)
		if err != nil {
			return upstreamError("list cars", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.GetPayments(gctx)
		if err != nil {
			return upstreamError("list payments", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views, err := assembleRentalViews(rentals, cars, payments)
	if err != nil {
		logger.ErrorContext(ctx, "Rental view assembly failed", "username", username, "error", err)
		return nil, err
	}
	return views, nil
}

func (s *gatewayService) GetRental(ctx context.Context, username string, rentalUID uuid.UUID) (*domain.RentalView, error) {
	rental, err := s.ownedRental(ctx, username, rentalUID)
	if err != nil {
		return nil, err
	}

	var (
		cars     []domain.Car
		payments []domain.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cars, err = s.inventory.ListCars(gctx, true)
		if err != nil {
			return upstreamError("list cars", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.GetPayments(gctx)
		if err != nil {
			return upstreamError("list payments", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view, err := assembleRentalView(*rental, indexCars(cars), indexPayments(payments))
	if err != nil {
		logger.ErrorContext(ctx, "Rental view assembly failed", "rental_uid", rentalUID, "error", err)
		return nil, err
	}
	return &view, nil
}

// Reserve runs the reservation sequence. Every step depends on the previous
// one, so nothing here runs concurrently. A failure after the car was marked
// unavailable is not rolled back; it is recorded for reconciliation.
func (s *gatewayService) Reserve(ctx context.Context, username string, req ReserveRequest) (*domain.ReservationView, error) {
	logger.EnterMethod("gatewayService.Reserve", "username", username, "car_uid", req.CarUID)

	period, err := utils.NewRentalPeriod(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	// Once calls start mutating downstream state the caller may no longer abandon the sequence.
	ctx = downstream.WithUserName(context.WithoutCancel(ctx), username)

	car, err := s.inventory.GetCar(ctx, req.CarUID)
	if err != nil {
		if errors.Is(err, downstream.ErrNotFound) {
			return nil, fmt.Errorf("%w: car %s not found", domain.ErrInvalidRequest, req.CarUID)
		}
		return nil, upstreamError("get car", err)
	}
	if !car.Availability {
		return nil, fmt.Errorf("%w: car %s is not available", domain.ErrInvalidRequest, car.CarUID)
	}

	// Correlation keys: minted here because no downstream call returns both
	// identifiers together.
	rentalUID := uuid.New()
	paymentUID := uuid.New()

	s.policy.run(ctx, bestEffortCall{
		operation: domain.OperationReserve,
		step:      domain.StepCarUnavailable,
		rentalUID: rentalUID,
		targetUID: car.CarUID,
	}, func(ctx context.Context) error {
		return s.inventory.SetCarAvailability(ctx, car.CarUID, false)
	})

	price := utils.CalculateRentalCost(car, period)

	rental := &domain.Rental{
		RentalUID:  rentalUID,
		Username:   username,
		PaymentUID: paymentUID,
		CarUID:     car.CarUID,
		DateFrom:   period.From,
		DateTo:     period.To,
		Status:     domain.RentalStatusInProgress,
	}
	if err := s.rentals.CreateRental(ctx, rental); err != nil {
		s.policy.record(ctx, bestEffortCall{
			operation: domain.OperationReserve,
			step:      domain.StepRentalCreate,
			rentalUID: rentalUID,
			targetUID: rentalUID,
		}, err)
		return nil, upstreamError("create rental", err)
	}

	payment := &domain.Payment{
		PaymentUID: paymentUID,
		Status:     domain.PaymentStatusPaid,
		Price:      price,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		s.policy.record(ctx, bestEffortCall{
			operation: domain.OperationReserve,
			step:      domain.StepPaymentCreate,
			rentalUID: rentalUID,
			targetUID: paymentUID,
		}, err)
		return nil, upstreamError("create payment", err)
	}

	logger.ExitMethod("gatewayService.Reserve", "rental_uid", rentalUID, "price", price)
	return assembleReservation(rental, payment), nil
}

// Finish returns the car and closes the rental. Both calls are best-effort;
// the payment is left untouched.
func (s *gatewayService) Finish(ctx context.Context, username string, rentalUID uuid.UUID) error {
	ctx = downstream.WithUserName(context.WithoutCancel(ctx), username)

	rental, err := s.ownedRental(ctx, username, rentalUID)
	if err != nil {
		return err
	}

	s.policy.run(ctx, bestEffortCall{
		operation: domain.OperationFinish,
		step:      domain.StepCarAvailable,
		rentalUID: rental.RentalUID,
		targetUID: rental.CarUID,
	}, func(ctx context.Context) error {
		return s.inventory.SetCarAvailability(ctx, rental.CarUID, true)
	})

	s.policy.run(ctx, bestEffortCall{
		operation: domain.OperationFinish,
		step:      domain.StepRentalFinish,
		rentalUID: rental.RentalUID,
		targetUID: rental.RentalUID,
	}, func(ctx context.Context) error {
		return s.rentals.SetRentalStatus(ctx, rental.RentalUID, domain.RentalStatusFinished)
	})

	return nil
}

// Cancel releases the car, cancels the rental and cancels the payment. All
// three calls are issued in that order even when earlier ones fail.
func (s *gatewayService) Cancel(ctx context.Context, username string, rentalUID uuid.UUID) error {
	ctx = downstream.WithUserName(context.WithoutCancel(ctx), username)

	rental, err := s.ownedRental(ctx, username, rentalUID)
	if err != nil {
		return err
	}

	s.policy.run(ctx, bestEffortCall{
		operation: domain.OperationCancel,
		step:      domain.StepCarAvailable,
		rentalUID: rental.RentalUID,
		targetUID: rental.CarUID,
	}, func(ctx context.Context) error {
		return s.inventory.SetCarAvailability(ctx, rental.CarUID, true)
	})

	s.policy.run(ctx, bestEffortCall{
		operation: domain.OperationCancel,
		step:      domain.StepRentalCancel,
		rentalUID: rental.RentalUID,
		targetUID: rental.RentalUID,
	}, func(ctx context.Context) error {
		return s.rentals.SetRentalStatus(ctx, rental.RentalUID, domain.RentalStatusCanceled)
	})

	s.policy.run(ctx, bestEffortCall{
		operation: domain.OperationCancel,
		step:      domain.StepPaymentCancel,
		rentalUID: rental.RentalUID,
		targetUID: rental.PaymentUID,
	}, func(ctx context.Context) error {
		return s.payments.SetPaymentStatus(ctx, rental.PaymentUID, domain.PaymentStatusCanceled)
	})

	return nil
}

// ownedRental fetches a rental and hides it from anyone but its owner.
func (s *gatewayService) ownedRental(ctx context.Context, username string, rentalUID uuid.UUID) (*domain.Rental, error) {
	rental, err := s.rentals.GetRental(ctx, rentalUID)
	if err != nil {
		if errors.Is(err, downstream.ErrNotFound) {
			return nil, fmt.Errorf("%w: rental %s", domain.ErrNotFound, rentalUID)
		}
		return nil, upstreamError("get rental", err)
	}
	if rental.Username != username {
		logger.DebugContext(ctx, "Rental requested by non-owner", "rental_uid", rentalUID, "username", username)
		return nil, fmt.Errorf("%w: rental %s", domain.ErrNotFound, rentalUID)
	}
	return rental, nil
}

func upstreamError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, operation, err)
}
