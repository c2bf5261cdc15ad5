package service

import (
	"context"

	"rental-gateway/internal/domain"

	"github.com/google/uuid"
)

// GatewayService coordinates the inventory, rental and payment services for
// one caller-facing workflow at a time. It holds no state between requests.
type GatewayService interface {
	ListCars(ctx context.Context, page, size int, showAll bool) (*domain.CarsPage, error)
	ListRentals(ctx context.Context, username string) ([]domain.RentalView, error)
	GetRental(ctx context.Context, username string, rentalUID uuid.UUID) (*domain.RentalView, error)
	Reserve(ctx context.Context, username string, req ReserveRequest) (*domain.ReservationView, error)
	Finish(ctx context.Context, username string, rentalUID uuid.UUID) error
	Cancel(ctx context.Context, username string, rentalUID uuid.UUID) error
}

type ReserveRequest struct {
	CarUID   uuid.UUID
	DateFrom domain.Date
	DateTo   domain.Date
}

// FailureRecorder receives every mutating downstream call that failed without
// changing the workflow's outcome.
type FailureRecorder interface {
	Record(ctx context.Context, failure *domain.BestEffortFailure) error
}
