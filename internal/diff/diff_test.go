package diff

import (
	"testing"

	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_SingleFieldChange(t *testing.T) {
	current := map[string]any{
		"status":       "open",
		"municipality": "Niteroi",
	}
	proposed := map[string]any{
		"status":       "closed",
		"municipality": "Niteroi",
	}

	changes := Compute(models.EntityOccurrence, current, proposed)

	require.Len(t, changes, 1)
	assert.Equal(t, models.FieldChange{From: "open", To: "closed"}, changes["status"])
}

func TestCompute_NoChangesYieldsEmptyMap(t *testing.T) {
	fields := map[string]any{
		"status":       "open",
		"municipality": "Niteroi",
		"description":  "collision on the bridge",
	}

	changes := Compute(models.EntityOccurrence, fields, fields)

	assert.Empty(t, changes)
}

func TestCompute_IgnoresFieldsOutsideAllowList(t *testing.T) {
	current := map[string]any{
		"status":     "open",
		"created_at": "2024-01-01",
	}
	proposed := map[string]any{
		"status":     "open",
		"created_at": "2024-06-01",
	}

	changes := Compute(models.EntityOccurrence, current, proposed)

	assert.Empty(t, changes)
}

func TestCompute_IgnoresFieldsNotProvided(t *testing.T) {
	current := map[string]any{
		"status":       "open",
		"municipality": "Niteroi",
	}
	proposed := map[string]any{
		"status": "alert",
	}

	changes := Compute(models.EntityOccurrence, current, proposed)

	require.Len(t, changes, 1)
	assert.Contains(t, changes, "status")
}

func TestCompute_PasswordChangeIsRedactedBothSides(t *testing.T) {
	current := map[string]any{
		"name":     "Ana",
		"password": "$2a$10$oldhash",
	}
	proposed := map[string]any{
		"name":     "Ana",
		"password": "$2a$10$newhash",
	}

	changes := Compute(models.EntityUser, current, proposed)

	require.Len(t, changes, 1)
	assert.Equal(t, models.FieldChange{From: RedactedValue, To: RedactedValue}, changes["password"])
}

func TestCompute_UnchangedPasswordProducesNoEntry(t *testing.T) {
	fields := map[string]any{
		"name":     "Ana",
		"password": "$2a$10$samehash",
	}

	changes := Compute(models.EntityUser, fields, fields)

	assert.Empty(t, changes)
}

func TestCompute_VehicleBooleanChange(t *testing.T) {
	current := map[string]any{
		"plate":  "ABC1234",
		"active": true,
	}
	proposed := map[string]any{
		"plate":  "ABC1234",
		"active": false,
	}

	changes := Compute(models.EntityVehicle, current, proposed)

	require.Len(t, changes, 1)
	assert.Equal(t, models.FieldChange{From: true, To: false}, changes["active"])
}

func TestCompute_UnknownEntityKindYieldsEmptyMap(t *testing.T) {
	changes := Compute(models.AuditEntity("report"), map[string]any{"a": 1}, map[string]any{"a": 2})

	assert.Empty(t, changes)
}
