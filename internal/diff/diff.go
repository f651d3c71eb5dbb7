// Package diff computes field-level before/after deltas for audited
// mutations. Only allow-listed fields per entity kind are compared, so
// incidental fields (timestamps, ids) never pollute the audit trail.
package diff

import (
	"reflect"

	"github.com/shenikar/occurrence_reporting_system/internal/models"
)

// RedactedValue replaces both sides of a password change in the diff.
const RedactedValue = "[REDACTED]"

const passwordField = "password"

// allowedFields lists, per entity kind, the fields that participate in
// change tracking.
var allowedFields = map[models.AuditEntity][]string{
	models.EntityOccurrence: {"type", "municipality", "status", "victimName", "vehicleNumber", "description"},
	models.EntityUser:       {"name", "email", "role", "unit", "registration", passwordField},
	models.EntityVehicle:    {"plate", "name", "active"},
}

// Compute returns the field→{from,to} delta between current and proposed for
// the given entity kind. A field is included only when it is allow-listed,
// present in proposed, and strictly different from the current value.
// Password changes are recorded with redacted placeholders on both sides.
// An empty result means the mutation is a no-op for audit purposes and the
// caller must not create an audit entry.
func Compute(kind models.AuditEntity, current, proposed map[string]any) map[string]models.FieldChange {
	changes := make(map[string]models.FieldChange)
	for _, field := range allowedFields[kind] {
		to, provided := proposed[field]
		if !provided {
			continue
		}
		from := current[field]
		if reflect.DeepEqual(from, to) {
			continue
		}
		if field == passwordField {
			changes[field] = models.FieldChange{From: RedactedValue, To: RedactedValue}
			continue
		}
		changes[field] = models.FieldChange{From: from, To: to}
	}
	return changes
}
