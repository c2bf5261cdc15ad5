package domain

import "github.com/google/uuid"

// Response shapes assembled from the three downstream services.

type CarsPage struct {
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	TotalElements int   `json:"totalElements"`
	Items         []Car `json:"items"`
}

type RentalCar struct {
	CarUID             uuid.UUID `json:"carUid"`
	Brand              string    `json:"brand"`
	Model              string    `json:"model"`
	RegistrationNumber string    `json:"registrationNumber"`
}

type RentalPayment struct {
	PaymentUID uuid.UUID     `json:"paymentUid"`
	Status     PaymentStatus `json:"status"`
	Price      int           `json:"price"`
}

type RentalView struct {
	RentalUID uuid.UUID     `json:"rentalUid"`
	Status    RentalStatus  `json:"status"`
	DateFrom  Date          `json:"dateFrom"`
	DateTo    Date          `json:"dateTo"`
	Car       RentalCar     `json:"car"`
	Payment   RentalPayment `json:"payment"`
}

type ReservationView struct {
	RentalUID uuid.UUID     `json:"rentalUid"`
	Status    RentalStatus  `json:"status"`
	CarUID    uuid.UUID     `json:"carUid"`
	DateFrom  Date          `json:"dateFrom"`
	DateTo    Date          `json:"dateTo"`
	Payment   RentalPayment `json:"payment"`
}
