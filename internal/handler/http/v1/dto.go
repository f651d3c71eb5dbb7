package v1

import (
	"time"
)

// LoginRequest DTO for authentication
// @Description DTO for authentication
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse DTO returned on successful login
// @Description DTO returned on successful login
type LoginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// CreateOccurrenceRequest DTO for creating an occurrence
// @Description DTO for creating an occurrence
type CreateOccurrenceRequest struct {
	Type           string    `json:"type" validate:"required,oneof=accident rescue fire pedestrian-strike other"`
	Status         string    `json:"status,omitempty" validate:"omitempty,oneof=open in-progress closed alert"`
	Municipality   string    `json:"municipality" validate:"required,min=2,max=255"`
	Neighborhood   string    `json:"neighborhood,omitempty"`
	Address        string    `json:"address" validate:"required"`
	Latitude       *float64  `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64  `json:"longitude,omitempty" validate:"omitempty,longitude"`
	OccurrenceDate time.Time `json:"occurrence_date" validate:"required"`
	ActivationDate time.Time `json:"activation_date" validate:"required"`
	VictimName     string    `json:"victim_name,omitempty"`
	VictimContact  string    `json:"victim_contact,omitempty"`
	VehicleID      string    `json:"vehicle_id,omitempty" validate:"omitempty,uuid"`
	Description    string    `json:"description" validate:"required"`
}

// UpdateOccurrenceRequest DTO for partially updating an occurrence
// @Description DTO for partially updating an occurrence
type UpdateOccurrenceRequest struct {
	Type           *string    `json:"type,omitempty" validate:"omitempty,oneof=accident rescue fire pedestrian-strike other"`
	Status         *string    `json:"status,omitempty" validate:"omitempty,oneof=open in-progress closed alert"`
	Municipality   *string    `json:"municipality,omitempty" validate:"omitempty,min=2,max=255"`
	Neighborhood   *string    `json:"neighborhood,omitempty"`
	Address        *string    `json:"address,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64   `json:"longitude,omitempty" validate:"omitempty,longitude"`
	OccurrenceDate *time.Time `json:"occurrence_date,omitempty"`
	ActivationDate *time.Time `json:"activation_date,omitempty"`
	VictimName     *string    `json:"victim_name,omitempty"`
	VictimContact  *string    `json:"victim_contact,omitempty"`
	VehicleID      *string    `json:"vehicle_id,omitempty" validate:"omitempty,uuid"`
	Description    *string    `json:"description,omitempty"`
}

// ChangeStatusRequest DTO for status transitions
// @Description DTO for status transitions
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in-progress closed alert"`
	Reason string `json:"reason,omitempty"`
}

// CreateUserRequest DTO for creating a user account
// @Description DTO for creating a user account
type CreateUserRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"required,oneof=admin supervisor operator user"`
	Registration string `json:"registration,omitempty"`
	Unit         string `json:"unit,omitempty"`
}

// UpdateUserRequest DTO for partially updating a user account
// @Description DTO for partially updating a user account
type UpdateUserRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Password     *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role         *string `json:"role,omitempty" validate:"omitempty,oneof=admin supervisor operator user"`
	Registration *string `json:"registration,omitempty"`
	Unit         *string `json:"unit,omitempty"`
}

// CreateVehicleRequest DTO for registering a vehicle
// @Description DTO for registering a vehicle
type CreateVehicleRequest struct {
	Plate  string `json:"plate" validate:"required,min=2,max=32"`
	Name   string `json:"name" validate:"required,min=2,max=255"`
	Active *bool  `json:"active,omitempty"`
}

// UpdateVehicleRequest DTO for partially updating a vehicle
// @Description DTO for partially updating a vehicle
type UpdateVehicleRequest struct {
	Plate  *string `json:"plate,omitempty" validate:"omitempty,min=2,max=32"`
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Active *bool   `json:"active,omitempty"`
}
