package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGatewayService struct {
	mock.Mock
}

func (m *MockGatewayService) ListCars(ctx context.Context, page, size int, showAll bool) (*domain.CarsPage, error) {
	args := m.Called(ctx, page, size, showAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarsPage), args.Error(1)
}
func (m *MockGatewayService) ListRentals(ctx context.Context, username string) ([]domain.RentalView, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalView), args.Error(1)
}
func (m *MockGatewayService) GetRental(ctx context.Context, username string, rentalUID uuid.UUID) (*domain.RentalView, error) {
	args := m.Called(ctx, username, rentalUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalView), args.Error(1)
}
func (m *MockGatewayService) Reserve(ctx context.Context, username string, req service.ReserveRequest) (*domain.ReservationView, error) {
	args := m.Called(ctx, username, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationView), args.Error(1)
}
func (m *MockGatewayService) Finish(ctx context.Context, username string, rentalUID uuid.UUID) error {
	args := m.Called(ctx, username, rentalUID)
	return args.Error(0)
}
func (m *MockGatewayService) Cancel(ctx context.Context, username string, rentalUID uuid.UUID) error {
	args := m.Called(ctx, username, rentalUID)
	return args.Error(0)
}

func newTestRouter(svc *MockGatewayService) http.Handler {
	return NewRouter(NewGatewayHandler(svc), RouterOptions{})
}

func serve(h http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set(UserNameHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestGatewayHandler_ListCars(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockGatewayService)
		page := &domain.CarsPage{Page: 1, PageSize: 10, TotalElements: 1, Items: []domain.Car{{CarUID: uuid.New(), Brand: "Mercedes Benz", Price: 3500, Availability: true}}}
		svc.On("ListCars", mock.Anything, 1, 10, true).Return(page, nil)

		rec := serve(newTestRouter(svc), http.MethodGet, "/api/v1/cars?page=1&size=10&showAll=true", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var got domain.CarsPage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 1, got.TotalElements)
		assert.Equal(t, "Mercedes Benz", got.Items[0].Brand)
	})

	t.Run("Invalid query", func(t *testing.T) {
		svc := new(MockGatewayService)
		for _, target := range []string{
			"/api/v1/cars?size=10",
			"/api/v1/cars?page=0&size=10",
			"/api/v1/cars?page=1&size=abc",
			"/api/v1/cars?page=1&size=10&showAll=maybe",
		} {
			rec := serve(newTestRouter(svc), http.MethodGet, target, "", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
		svc.AssertNotCalled(t, "ListCars", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Upstream unavailable", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("ListCars", mock.Anything, 1, 10, false).
			Return(nil, fmt.Errorf("%w: list cars: timeout", domain.ErrUpstreamUnavailable))

		rec := serve(newTestRouter(svc), http.MethodGet, "/api/v1/cars?page=1&size=10", "", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "downstream service unavailable", decodeMessage(t, rec))
	})
}

func TestGatewayHandler_UserNameRequired(t *testing.T) {
	svc := new(MockGatewayService)
	router := newTestRouter(svc)
	uid := uuid.New().String()

	routes := []struct{ method, target, body string }{
		{http.MethodGet, "/api/v1/rental", ""},
		{http.MethodPost, "/api/v1/rental", `{"carUid":"` + uid + `","dateFrom":"2024-01-01","dateTo":"2024-01-04"}`},
		{http.MethodGet, "/api/v1/rental/" + uid, ""},
		{http.MethodPost, "/api/v1/rental/" + uid + "/finish", ""},
		{http.MethodDelete, "/api/v1/rental/" + uid, ""},
	}
	for _, route := range routes {
		rec := serve(router, route.method, route.target, "", route.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, route.method+" "+route.target)
		assert.Contains(t, decodeMessage(t, rec), UserNameHeader)
	}
	assert.Empty(t, svc.Calls)
}

func TestGatewayHandler_Reserve(t *testing.T) {
	carUID := uuid.New()
	body := fmt.Sprintf(`{"carUid":"%s","dateFrom":"2024-01-01","dateTo":"2024-01-04"}`, carUID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockGatewayService)
		want := service.ReserveRequest{
			CarUID:   carUID,
			DateFrom: domain.NewDate(2024, time.January, 1),
			DateTo:   domain.NewDate(2024, time.January, 4),
		}
		view := &domain.ReservationView{
			RentalUID: uuid.New(),
			Status:    domain.RentalStatusInProgress,
			CarUID:    carUID,
			DateFrom:  want.DateFrom,
			DateTo:    want.DateTo,
			Payment:   domain.RentalPayment{PaymentUID: uuid.New(), Status: domain.PaymentStatusPaid, Price: 300},
		}
		svc.On("Reserve", mock.Anything, "U1", want).Return(view, nil)

		rec := serve(newTestRouter(svc), http.MethodPost, "/api/v1/rental", "U1", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, view.RentalUID.String(), got["rentalUid"])
		assert.Equal(t, "IN_PROGRESS", got["status"])
		assert.Equal(t, "2024-01-01", got["dateFrom"])
		assert.Equal(t, float64(300), got["payment"].(map[string]any)["price"])
	})

	t.Run("Malformed body", func(t *testing.T) {
		svc := new(MockGatewayService)
		rec := serve(newTestRouter(svc), http.MethodPost, "/api/v1/rental", "U1", `{"carUid":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing car", func(t *testing.T) {
		svc := new(MockGatewayService)
		rec := serve(newTestRouter(svc), http.MethodPost, "/api/v1/rental", "U1", `{"dateFrom":"2024-01-01","dateTo":"2024-01-04"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Car not available", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("Reserve", mock.Anything, "U1", mock.Anything).
			Return(nil, fmt.Errorf("%w: car %s is not available", domain.ErrInvalidRequest, carUID))

		rec := serve(newTestRouter(svc), http.MethodPost, "/api/v1/rental", "U1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeMessage(t, rec), "not available")
	})
}

func TestGatewayHandler_Rentals(t *testing.T) {
	rentalUID := uuid.New()

	t.Run("List", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("ListRentals", mock.Anything, "U1").Return([]domain.RentalView{}, nil)

		rec := serve(newTestRouter(svc), http.MethodGet, "/api/v1/rental", "U1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("Get not found", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("GetRental", mock.Anything, "U1", rentalUID).
			Return(nil, fmt.Errorf("%w: rental %s", domain.ErrNotFound, rentalUID))

		rec := serve(newTestRouter(svc), http.MethodGet, "/api/v1/rental/"+rentalUID.String(), "U1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Get data-integrity fault", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("GetRental", mock.Anything, "U1", rentalUID).
			Return(nil, fmt.Errorf("%w: unknown car", domain.ErrDataIntegrity))

		rec := serve(newTestRouter(svc), http.MethodGet, "/api/v1/rental/"+rentalUID.String(), "U1", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "inconsistent data across services", decodeMessage(t, rec))
	})

	t.Run("Invalid uid", func(t *testing.T) {
		svc := new(MockGatewayService)
		rec := serve(newTestRouter(svc), http.MethodGet, "/api/v1/rental/not-a-uuid", "U1", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.Calls)
	})

	t.Run("Finish", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("Finish", mock.Anything, "U1", rentalUID).Return(nil)

		rec := serve(newTestRouter(svc), http.MethodPost, "/api/v1/rental/"+rentalUID.String()+"/finish", "U1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("Cancel", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("Cancel", mock.Anything, "U1", rentalUID).Return(nil)

		rec := serve(newTestRouter(svc), http.MethodDelete, "/api/v1/rental/"+rentalUID.String(), "U1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Cancel by non-owner", func(t *testing.T) {
		svc := new(MockGatewayService)
		svc.On("Cancel", mock.Anything, "intruder", rentalUID).
			Return(fmt.Errorf("%w: rental %s", domain.ErrNotFound, rentalUID))

		rec := serve(newTestRouter(svc), http.MethodDelete, "/api/v1/rental/"+rentalUID.String(), "intruder", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGatewayHandler_Health(t *testing.T) {
	rec := serve(newTestRouter(new(MockGatewayService)), http.MethodGet, "/manage/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	svc := new(MockGatewayService)
	svc.On("ListRentals", mock.Anything, "U1").Run(func(mock.Arguments) { panic("boom") })

	rec := serve(newTestRouter(svc), http.MethodGet, "/api/v1/rental", "U1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
