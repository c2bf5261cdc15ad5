package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/downstream"

	"github.com/google/uuid"
)

type rentalClient struct {
	*endpoint
}

func NewRentalClient(opts Options) downstream.RentalClient {
	return &rentalClient{endpoint: newEndpoint(downstream.ServiceRental, opts)}
}

func (c *rentalClient) GetRental(ctx context.Context, rentalUID uuid.UUID) (*domain.Rental, error) {
	var rental domain.Rental
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/" + rentalUID.String(),
		out:    &rental,
		lookup: true,
	})
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (c *rentalClient) ListRentals(ctx context.Context, username string) ([]domain.Rental, error) {
	var rentals []domain.Rental
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/",
		header: http.Header{userNameHeader: {username}},
		out:    &rentals,
	})
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (c *rentalClient) CreateRental(ctx context.Context, rental *domain.Rental) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/",
		body:   rental,
	})
}

func (c *rentalClient) SetRentalStatus(ctx context.Context, rentalUID uuid.UUID, status domain.RentalStatus) error {
	var action string
	switch status {
	case domain.RentalStatusFinished:
		action = "finish"
	case domain.RentalStatusCanceled:
		action = "cancel"
	default:
		return fmt.Errorf("rental service has no transition to %s", status)
	}
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/" + rentalUID.String() + "/" + action,
		lookup: true,
	})
}

func (c *rentalClient) Ping(ctx context.Context) error {
	return c.ping(ctx)
}
