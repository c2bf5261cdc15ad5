package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/downstream"

	"github.com/google/uuid"
)

type paymentClient struct {
	*endpoint
}

func NewPaymentClient(opts Options) downstream.PaymentClient {
	return &paymentClient{endpoint: newEndpoint(downstream.ServicePayment, opts)}
}

func (c *paymentClient) GetPayments(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/",
		out:    &payments,
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (c *paymentClient) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/",
		body:   payment,
	})
}

func (c *paymentClient) SetPaymentStatus(ctx context.Context, paymentUID uuid.UUID, status domain.PaymentStatus) error {
	if status != domain.PaymentStatusCanceled {
		return fmt.Errorf("payment service has no transition to %s", status)
	}
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/" + paymentUID.String() + "/cancel",
		lookup: true,
	})
}

func (c *paymentClient) Ping(ctx context.Context) error {
	return c.ping(ctx)
}
