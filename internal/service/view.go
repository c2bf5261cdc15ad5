package service

import (
	"fmt"

	"rental-gateway/internal/domain"

	"github.com/google/uuid"
)

// The assemblers below are pure joins. They keep the order of the primary
// collection and never drop a row: a rental whose car or payment is missing
// is reported as a data-integrity fault.

func assembleCarsPage(page, size int, cars []domain.Car) *domain.CarsPage {
	total := len(cars)
	result := &domain.CarsPage{
		Page:          page,
		PageSize:      size,
		TotalElements: total,
		Items:         []domain.Car{},
	}
	if size < 1 {
		return result
	}

	// Compare page counts rather than (page-1)*size so huge inputs cannot overflow.
	pages := total / size
	if total%size != 0 {
		pages++
	}
	if page < 1 || page > pages {
		return result
	}

	start := (page - 1) * size
	end := start + min(size, total-start)
	result.Items = append(result.Items, cars[start:end]...)
	return result
}

// indexCars keys cars by UID. On duplicates the last record wins.
func indexCars(cars []domain.Car) map[uuid.UUID]domain.Car {
	index := make(map[uuid.UUID]domain.Car, len(cars))
	for _, c := range cars {
		index[c.CarUID] = c
	}
	return index
}

// indexPayments keys payments by UID. On duplicates the last record wins.
func indexPayments(payments []domain.Payment) map[uuid.UUID]domain.Payment {
	index := make(map[uuid.UUID]domain.Payment, len(payments))
	for _, p := range payments {
		index[p.PaymentUID] = p
	}
	return index
}

func assembleRentalView(rental domain.Rental, cars map[uuid.UUID]domain.Car, payments map[uuid.UUID]domain.Payment) (domain.RentalView, error) {
	car, ok := cars[rental.CarUID]
	if !ok {
		return domain.RentalView{}, fmt.Errorf("%w: rental %s references unknown car %s",
			domain.ErrDataIntegrity, rental.RentalUID, rental.CarUID)
	}
	payment, ok := payments[rental.PaymentUID]
	if !ok {
		return domain.RentalView{}, fmt.Errorf("%w: rental %s references unknown payment %s",
			domain.ErrDataIntegrity, rental.RentalUID, rental.PaymentUID)
	}

	return domain.RentalView{
		RentalUID: rental.RentalUID,
		Status:    rental.Status,
		DateFrom:  rental.DateFrom,
		DateTo:    rental.DateTo,
		Car: domain.RentalCar{
			CarUID:             car.CarUID,
			Brand:              car.Brand,
			Model:              car.Model,
			RegistrationNumber: car.RegistrationNumber,
		},
		Payment: rentalPayment(payment),
	}, nil
}

func assembleRentalViews(rentals []domain.Rental, cars []domain.Car, payments []domain.Payment) ([]domain.RentalView, error) {
	carIndex := indexCars(cars)
	paymentIndex := indexPayments(payments)

	views := make([]domain.RentalView, 0, len(rentals))
	for _, rental := range rentals {
		view, err := assembleRentalView(rental, carIndex, paymentIndex)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func assembleReservation(rental *domain.Rental, payment *domain.Payment) *domain.ReservationView {
	return &domain.ReservationView{
		RentalUID: rental.RentalUID,
		Status:    rental.Status,
		CarUID:    rental.CarUID,
		DateFrom:  rental.DateFrom,
		DateTo:    rental.DateTo,
		Payment:   rentalPayment(*payment),
	}
}

func rentalPayment(p domain.Payment) domain.RentalPayment {
	return domain.RentalPayment{
		PaymentUID: p.PaymentUID,
		Status:     p.Status,
		Price:      p.Price,
	}
}
