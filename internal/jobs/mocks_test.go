package jobs

import (
	"context"
	"time"

	"rental-gateway/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInventoryClient
type MockInventoryClient struct {
	mock.Mock
}

func (m *MockInventoryClient) GetCar(ctx context.Context, carUID uuid.UUID) (*domain.Car, error) {
	args := m.Called(ctx, carUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}
func (m *MockInventoryClient) ListCars(ctx context.Context, showAll bool) ([]domain.Car, error) {
	args := m.Called(ctx, showAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Car), args.Error(1)
}
func (m *MockInventoryClient) SetCarAvailability(ctx context.Context, carUID uuid.UUID, available bool) error {
	args := m.Called(ctx, carUID, available)
	return args.Error(0)
}
func (m *MockInventoryClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRentalClient
type MockRentalClient struct {
	mock.Mock
}

func (m *MockRentalClient) GetRental(ctx context.Context, rentalUID uuid.UUID) (*domain.Rental, error) {
	args := m.Called(ctx, rentalUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalClient) ListRentals(ctx context.Context, username string) ([]domain.Rental, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalClient) CreateRental(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalClient) SetRentalStatus(ctx context.Context, rentalUID uuid.UUID, status domain.RentalStatus) error {
	args := m.Called(ctx, rentalUID, status)
	return args.Error(0)
}
func (m *MockRentalClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPaymentClient
type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) GetPayments(ctx context.Context) ([]domain.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentClient) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentClient) SetPaymentStatus(ctx context.Context, paymentUID uuid.UUID, status domain.PaymentStatus) error {
	args := m.Called(ctx, paymentUID, status)
	return args.Error(0)
}
func (m *MockPaymentClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockFailureRepository
type MockFailureRepository struct {
	mock.Mock
}

func (m *MockFailureRepository) Create(ctx context.Context, failure *domain.BestEffortFailure) error {
	args := m.Called(ctx, failure)
	return args.Error(0)
}
func (m *MockFailureRepository) ListUnresolved(ctx context.Context, limit int) ([]domain.BestEffortFailure, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BestEffortFailure), args.Error(1)
}
func (m *MockFailureRepository) MarkResolved(ctx context.Context, id uuid.UUID, resolvedAt time.Time) error {
	args := m.Called(ctx, id, resolvedAt)
	return args.Error(0)
}
func (m *MockFailureRepository) CountUnresolved(ctx context.Context) (map[domain.Step]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Step]int), args.Error(1)
}

// MockHealthReporter
type MockHealthReporter struct {
	mock.Mock
}

func (m *MockHealthReporter) SetServing(service string, serving bool) {
	m.Called(service, serving)
}
