package domain

import "github.com/google/uuid"

type RentalStatus string

const (
	RentalStatusInProgress RentalStatus = "IN_PROGRESS"
	RentalStatusFinished   RentalStatus = "FINISHED"
	RentalStatusCanceled   RentalStatus = "CANCELED"
)

// Terminal reports whether no further transition is allowed from s.
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusFinished || s == RentalStatusCanceled
}

type Rental struct {
	RentalUID  uuid.UUID    `json:"rentalUid"`
	Username   string       `json:"username"`
	PaymentUID uuid.UUID    `json:"paymentUid"`
	CarUID     uuid.UUID    `json:"carUid"`
	DateFrom   Date         `json:"dateFrom"`
	DateTo     Date         `json:"dateTo"`
	Status     RentalStatus `json:"status"`
}
