package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	ActionLogin    AuditAction = "login"
	ActionLogout   AuditAction = "logout"
	ActionCreate   AuditAction = "create"
	ActionUpdate   AuditAction = "update"
	ActionDelete   AuditAction = "delete"
	ActionDownload AuditAction = "download"
)

type AuditEntity string

const (
	EntityUser       AuditEntity = "user"
	EntityOccurrence AuditEntity = "occurrence"
	EntityReport     AuditEntity = "report"
	EntityVehicle    AuditEntity = "vehicle"
)

// ValidAuditAction reports whether a is a member of the audit action enum.
func ValidAuditAction(a AuditAction) bool {
	switch a {
	case ActionLogin, ActionLogout, ActionCreate, ActionUpdate, ActionDelete, ActionDownload:
		return true
	}
	return false
}

// ValidAuditEntity reports whether e is a member of the audit entity enum.
func ValidAuditEntity(e AuditEntity) bool {
	switch e {
	case EntityUser, EntityOccurrence, EntityReport, EntityVehicle:
		return true
	}
	return false
}

// FieldChange is a single before/after pair inside an audit diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// AuditLogEntry is one immutable record in the audit trail. Entries are
// created by the audit recorder only and never updated or deleted.
// UserID is nil when the acting user has since been removed.
type AuditLogEntry struct {
	ID        uuid.UUID              `json:"id"`
	UserID    *uuid.UUID             `json:"user_id,omitempty"`
	Action    AuditAction            `json:"action"`
	Entity    AuditEntity            `json:"entity"`
	EntityID  *uuid.UUID             `json:"entity_id,omitempty"`
	Details   map[string]any         `json:"details,omitempty"`
	Changes   map[string]FieldChange `json:"changes,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// AuditFilter is the filter set accepted by the audit trail read side.
type AuditFilter struct {
	UserID    *uuid.UUID
	Action    *AuditAction
	Entity    *AuditEntity
	EntityID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// ActorActivity is one row of the "most active users" ranking.
type ActorActivity struct {
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Actions int       `json:"actions"`
}

// SystemActivity summarizes the audit trail over a trailing window.
type SystemActivity struct {
	Days         int             `json:"days"`
	TotalActions int             `json:"total_actions"`
	ByAction     map[string]int  `json:"by_action"`
	TopUsers     []ActorActivity `json:"top_users"`
}
