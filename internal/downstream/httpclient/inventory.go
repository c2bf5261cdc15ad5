package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/downstream"

	"github.com/google/uuid"
)

type inventoryClient struct {
	*endpoint
}

// NewInventoryClient talks to the cars service rooted at opts.BaseURL (e.g. http://cars:8070/api/v1/cars).
func NewInventoryClient(opts Options) downstream.InventoryClient {
	return &inventoryClient{endpoint: newEndpoint(downstream.ServiceInventory, opts)}
}

func (c *inventoryClient) GetCar(ctx context.Context, carUID uuid.UUID) (*domain.Car, error) {
	var car domain.Car
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/" + carUID.String(),
		out:    &car,
		lookup: true,
	})
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (c *inventoryClient) ListCars(ctx context.Context, showAll bool) ([]domain.Car, error) {
	var cars []domain.Car
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/",
		query:  url.Values{"showAll": {strconv.FormatBool(showAll)}},
		out:    &cars,
	})
	if err != nil {
		return nil, err
	}
	return cars, nil
}

func (c *inventoryClient) SetCarAvailability(ctx context.Context, carUID uuid.UUID, available bool) error {
	action := "unavailable"
	if available {
		action = "available"
	}
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/" + carUID.String() + "/" + action,
		lookup: true,
	})
}

func (c *inventoryClient) Ping(ctx context.Context) error {
	return c.ping(ctx)
}
