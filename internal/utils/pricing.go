package utils

import (
	"fmt"

	"rental-gateway/internal/domain"
)

// RentalPeriod is the validated date range of a reservation.
type RentalPeriod struct {
	From domain.Date
	To   domain.Date
}

// NewRentalPeriod checks that both dates are present and ordered.
func NewRentalPeriod(from, to domain.Date) (RentalPeriod, error) {
	if from.IsZero() || to.IsZero() {
		return RentalPeriod{}, fmt.Errorf("dateFrom and dateTo are required")
	}
	if to.Before(from.Time) {
		return RentalPeriod{}, fmt.Errorf("dateTo %s is before dateFrom %s", to, from)
	}
	return RentalPeriod{From: from, To: to}, nil
}

// Days returns the whole-day span of the period. The end date is exclusive,
// so 2024-01-01..2024-01-04 is three days.
func (p RentalPeriod) Days() int {
	return p.From.DaysUntil(p.To)
}

// CalculateRentalCost charges the car's daily price for every day of the period.
func CalculateRentalCost(car *domain.Car, period RentalPeriod) int {
	return car.Price * period.Days()
}
