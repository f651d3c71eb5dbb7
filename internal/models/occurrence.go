package models

import (
	"time"

	"github.com/google/uuid"
)

type OccurrenceType string

const (
	TypeAccident         OccurrenceType = "accident"
	TypeRescue           OccurrenceType = "rescue"
	TypeFire             OccurrenceType = "fire"
	TypePedestrianStrike OccurrenceType = "pedestrian-strike"
	TypeOther            OccurrenceType = "other"
)

type OccurrenceStatus string

const (
	StatusOpen       OccurrenceStatus = "open"
	StatusInProgress OccurrenceStatus = "in-progress"
	StatusClosed     OccurrenceStatus = "closed"
	StatusAlert      OccurrenceStatus = "alert"
)

// ValidType reports whether t is a member of the occurrence type enum.
func ValidType(t OccurrenceType) bool {
	switch t {
	case TypeAccident, TypeRescue, TypeFire, TypePedestrianStrike, TypeOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is a member of the occurrence status enum.
func ValidStatus(s OccurrenceStatus) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed, StatusAlert:
		return true
	}
	return false
}

// Occurrence is a reported safety incident tracked through its lifecycle.
type Occurrence struct {
	ID             uuid.UUID        `json:"id"`
	Type           OccurrenceType   `json:"type"`
	Status         OccurrenceStatus `json:"status"`
	Municipality   string           `json:"municipality"`
	Neighborhood   string           `json:"neighborhood,omitempty"`
	Address        string           `json:"address"`
	Latitude       *float64         `json:"latitude,omitempty"`
	Longitude      *float64         `json:"longitude,omitempty"`
	OccurrenceDate time.Time        `json:"occurrence_date"`
	ActivationDate time.Time        `json:"activation_date"`
	VictimName     string           `json:"victim_name,omitempty"`
	VictimContact  string           `json:"victim_contact,omitempty"`
	VehicleID      *uuid.UUID       `json:"vehicle_id,omitempty"`
	Description    string           `json:"description"`
	CreatedBy      uuid.UUID        `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// OccurrenceUpdate carries the fields a caller may change on an existing
// occurrence. Nil means "not provided" and leaves the stored value untouched.
type OccurrenceUpdate struct {
	Type           *OccurrenceType
	Status         *OccurrenceStatus
	Municipality   *string
	Neighborhood   *string
	Address        *string
	Latitude       *float64
	Longitude      *float64
	OccurrenceDate *time.Time
	ActivationDate *time.Time
	VictimName     *string
	VictimContact  *string
	VehicleID      *uuid.UUID
	Description    *string
}

// OccurrenceFilter is the filter set accepted by the occurrence query engine.
type OccurrenceFilter struct {
	Type         *OccurrenceType
	Status       *OccurrenceStatus
	Municipality string
	Neighborhood string
	Search       string
	StartDate    *time.Time
	EndDate      *time.Time
	CreatedBy    *uuid.UUID
	Page         int
	Limit        int
}

// StatusCounts holds per-status counts for a filtered occurrence population.
// Total also includes rows whose stored status is not a known enum member.
type StatusCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
	Alert      int `json:"alert"`
	Total      int `json:"total"`
}

// OccurrenceList is one page of a filtered listing plus the aggregate counts
// computed over the same filter set.
type OccurrenceList struct {
	Items        []*Occurrence
	StatusCounts StatusCounts
	Page         int
	Limit        int
	Total        int
}
