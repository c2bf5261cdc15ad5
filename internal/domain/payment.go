package domain

import "github.com/google/uuid"

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

type Payment struct {
	PaymentUID uuid.UUID     `json:"paymentUid"`
	Status     PaymentStatus `json:"status"`
	Price      int           `json:"price"`
}
