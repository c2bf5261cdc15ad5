package domain

import "github.com/google/uuid"

type Car struct {
	CarUID             uuid.UUID `json:"carUid"`
	Brand              string    `json:"brand"`
	Model              string    `json:"model"`
	RegistrationNumber string    `json:"registrationNumber"`
	Power              int       `json:"power"`
	Type               string    `json:"type"`
	// Price is charged per rental day.
	Price        int  `json:"price"`
	Availability bool `json:"availability"`
}
