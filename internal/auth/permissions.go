package auth

import (
	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
)

// Principal is the authenticated caller as seen by the service layer.
type Principal struct {
	ID   uuid.UUID
	Role models.Role
}

// capability is a single right a role may hold.
type capability uint8

const (
	capReadAll capability = iota
	capWriteAll
	capDeleteRecords // occurrences, reports, vehicles
	capDeleteUsers
	capManageUsers
	capManageFleet
	capViewAllAudit
)

// capabilities is the single source of truth for role rights. Service code
// must go through the Can* helpers instead of comparing role strings.
var capabilities = map[models.Role]map[capability]bool{
	models.RoleAdmin: {
		capReadAll:       true,
		capWriteAll:      true,
		capDeleteRecords: true,
		capDeleteUsers:   true,
		capManageUsers:   true,
		capManageFleet:   true,
		capViewAllAudit:  true,
	},
	models.RoleSupervisor: {
		capReadAll:       true,
		capWriteAll:      true,
		capDeleteRecords: true,
		capManageFleet:   true,
		capViewAllAudit:  true,
	},
	models.RoleOperator: {},
	models.RoleUser:     {},
}

func has(p Principal, c capability) bool {
	return capabilities[p.Role][c]
}

// CanRead reports whether p may read a record owned by ownerID.
func CanRead(p Principal, ownerID uuid.UUID) bool {
	return has(p, capReadAll) || ownerID == p.ID
}

// CanWrite reports whether p may mutate a record owned by ownerID.
func CanWrite(p Principal, ownerID uuid.UUID) bool {
	return has(p, capWriteAll) || ownerID == p.ID
}

// CanDelete reports whether p may delete records of the given entity kind.
// User deletion is admin-only; everything else is admin or supervisor.
func CanDelete(p Principal, entity models.AuditEntity) bool {
	if entity == models.EntityUser {
		return has(p, capDeleteUsers)
	}
	return has(p, capDeleteRecords)
}

// CanManageUsers reports whether p may create users or change roles.
func CanManageUsers(p Principal) bool {
	return has(p, capManageUsers)
}

// CanManageFleet reports whether p may create or update vehicles.
func CanManageFleet(p Principal) bool {
	return has(p, capManageFleet)
}

// CanViewAllAudit reports whether p may read audit entries of other actors.
func CanViewAllAudit(p Principal) bool {
	return has(p, capViewAllAudit)
}

// VisibilityFilter returns the owner constraint to force onto listing
// queries for p, or nil when p sees everything. The narrowing is applied
// server-side and overrides whatever the client asked for.
func VisibilityFilter(p Principal) *uuid.UUID {
	if has(p, capReadAll) {
		return nil
	}
	id := p.ID
	return &id
}
