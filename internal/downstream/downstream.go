// Package downstream declares the typed clients the gateway uses to reach the
// inventory, rental and payment services.
//
// Every operation has three distinguishable outcomes: the decoded record, an
// error matching ErrNotFound for an absent resource, or an error matching
// ErrUnavailable for a transport failure, timeout or unexpected status. Clients
// never retry.
package downstream

import (
	"context"
	"errors"

	"rental-gateway/internal/domain"

	"github.com/google/uuid"
)

// Service names used in logs, health reporting and failure records.
const (
	ServiceInventory = "inventory"
	ServiceRental    = "rental"
	ServicePayment   = "payment"
)

var (
	ErrNotFound    = errors.New("downstream resource not found")
	ErrUnavailable = errors.New("downstream service unavailable")
)

type InventoryClient interface {
	GetCar(ctx context.Context, carUID uuid.UUID) (*domain.Car, error)
	// ListCars returns every car when showAll is set, otherwise only available ones.
	ListCars(ctx context.Context, showAll bool) ([]domain.Car, error)
	SetCarAvailability(ctx context.Context, carUID uuid.UUID, available bool) error
	Ping(ctx context.Context) error
}

type RentalClient interface {
	GetRental(ctx context.Context, rentalUID uuid.UUID) (*domain.Rental, error)
	ListRentals(ctx context.Context, username string) ([]domain.Rental, error)
	CreateRental(ctx context.Context, rental *domain.Rental) error
	// SetRentalStatus moves a rental to FINISHED or CANCELED.
	SetRentalStatus(ctx context.Context, rentalUID uuid.UUID, status domain.RentalStatus) error
	Ping(ctx context.Context) error
}

type PaymentClient interface {
	GetPayments(ctx context.Context) ([]domain.Payment, error)
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	// SetPaymentStatus moves a payment to CANCELED.
	SetPaymentStatus(ctx context.Context, paymentUID uuid.UUID, status domain.PaymentStatus) error
	Ping(ctx context.Context) error
}

type userNameKey struct{}

// WithUserName attaches the caller identity that clients forward as the
// User-Name header.
func WithUserName(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userNameKey{}, username)
}

// UserNameFromContext returns the identity set by WithUserName, if any.
func UserNameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(userNameKey{}).(string)
	return username, ok && username != ""
}
