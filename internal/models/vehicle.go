package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a response vehicle that can be assigned to occurrences.
type Vehicle struct {
	ID        uuid.UUID `json:"id"`
	Plate     string    `json:"plate"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VehicleUpdate carries the fields a caller may change on an existing vehicle.
type VehicleUpdate struct {
	Plate  *string
	Name   *string
	Active *bool
}
