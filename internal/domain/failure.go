package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation names the caller-facing workflow that issued a downstream call.
type Operation string

const (
	OperationReserve Operation = "reserve"
	OperationFinish  Operation = "finish"
	OperationCancel  Operation = "cancel"
)

// Step names one mutating downstream call inside a workflow.
type Step string

const (
	StepCarUnavailable Step = "car.unavailable"
	StepCarAvailable   Step = "car.available"
	StepRentalCreate   Step = "rental.create"
	StepRentalFinish   Step = "rental.finish"
	StepRentalCancel   Step = "rental.cancel"
	StepPaymentCreate  Step = "payment.create"
	StepPaymentCancel  Step = "payment.cancel"
)

// BestEffortFailure records a mutating downstream call that failed and was
// neither retried nor rolled back. TargetUID is the car, rental or payment the
// call addressed.
type BestEffortFailure struct {
	ID         uuid.UUID  `json:"id"`
	Operation  Operation  `json:"operation"`
	Step       Step       `json:"step"`
	RentalUID  uuid.UUID  `json:"rentalUid"`
	TargetUID  uuid.UUID  `json:"targetUid"`
	Error      string     `json:"error"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}
