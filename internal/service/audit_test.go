package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestAuditService builds a service instance backed by mocks.
func newTestAuditService(t *testing.T) (*auditService, *mocks.MockAuditRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockAuditRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Silence logs during tests

	service := NewAuditService(repoMock, logger)
	return service.(*auditService), repoMock
}

func TestRecord_WritesEntry(t *testing.T) {
	service, repoMock := newTestAuditService(t)
	ctx := context.Background()
	actor := uuid.New()
	entityID := uuid.New()

	var seenEntry *models.AuditLogEntry
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *models.AuditLogEntry) error {
			seenEntry = entry
			return nil
		}).Times(1)

	service.Record(ctx, &actor, models.ActionCreate, models.EntityOccurrence, &entityID, nil, map[string]any{"type": "fire"})

	require.NotNil(t, seenEntry)
	assert.Equal(t, &actor, seenEntry.UserID)
	assert.Equal(t, models.ActionCreate, seenEntry.Action)
	assert.Equal(t, models.EntityOccurrence, seenEntry.Entity)
	assert.Equal(t, &entityID, seenEntry.EntityID)
	assert.Equal(t, map[string]any{"type": "fire"}, seenEntry.Details)
}

func TestRecord_StorageFailureIsSwallowed(t *testing.T) {
	service, repoMock := newTestAuditService(t)
	ctx := context.Background()
	actor := uuid.New()

	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		Return(fmt.Errorf("db down")).
		Times(1)

	// Record returns nothing; the failure must not panic or propagate.
	service.Record(ctx, &actor, models.ActionDelete, models.EntityVehicle, nil, nil, nil)
}

func TestAuditList_PrivilegedSeesRequestedActor(t *testing.T) {
	service, repoMock := newTestAuditService(t)
	ctx := context.Background()
	p := adminPrincipal()
	requested := uuid.New()

	var seenFilter models.AuditFilter
	repoMock.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.AuditFilter) ([]*models.AuditLogEntry, int, error) {
			seenFilter = filter
			return []*models.AuditLogEntry{}, 0, nil
		}).Times(1)

	_, _, err := service.List(ctx, p, models.AuditFilter{UserID: &requested})

	require.NoError(t, err)
	require.NotNil(t, seenFilter.UserID)
	assert.Equal(t, requested, *seenFilter.UserID)
}

func TestAuditList_UnprivilegedForcedOntoOwnEntries(t *testing.T) {
	service, repoMock := newTestAuditService(t)
	ctx := context.Background()
	p := operatorPrincipal()
	requested := uuid.New()

	var seenFilter models.AuditFilter
	repoMock.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.AuditFilter) ([]*models.AuditLogEntry, int, error) {
			seenFilter = filter
			return []*models.AuditLogEntry{}, 0, nil
		}).Times(1)

	_, _, err := service.List(ctx, p, models.AuditFilter{UserID: &requested})

	require.NoError(t, err)
	require.NotNil(t, seenFilter.UserID)
	assert.Equal(t, p.ID, *seenFilter.UserID, "requested actor filter must be overridden")
}

func TestAuditList_UnknownActionRejected(t *testing.T) {
	service, _ := newTestAuditService(t)
	action := models.AuditAction("explode")

	_, _, err := service.List(context.Background(), adminPrincipal(), models.AuditFilter{Action: &action})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserActivity_SelfAlwaysAllowed(t *testing.T) {
	service, repoMock := newTestAuditService(t)
	ctx := context.Background()
	p := operatorPrincipal()

	repoMock.EXPECT().
		List(ctx, gomock.Any()).
		Return([]*models.AuditLogEntry{{}}, 1, nil).
		Times(1)

	entries, total, err := service.UserActivity(ctx, p, p.ID, 1, 20)

	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, total)
}

func TestUserActivity_ForeignActorDenied(t *testing.T) {
	service, _ := newTestAuditService(t)

	_, _, err := service.UserActivity(context.Background(), operatorPrincipal(), uuid.New(), 1, 20)

	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSystemActivity_SumsByAction(t *testing.T) {
	service, repoMock := newTestAuditService(t)
	ctx := context.Background()
	p := adminPrincipal()

	repoMock.EXPECT().
		CountByAction(ctx, gomock.Any()).
		Return(map[string]int{"create": 4, "update": 3, "login": 2}, nil).
		Times(1)

	repoMock.EXPECT().
		TopActors(ctx, gomock.Any(), topActorsLimit).
		Return([]models.ActorActivity{{Actions: 5}}, nil).
		Times(1)

	activity, err := service.SystemActivity(ctx, p, 7)

	require.NoError(t, err)
	assert.Equal(t, 7, activity.Days)
	assert.Equal(t, 9, activity.TotalActions)
	assert.Len(t, activity.TopUsers, 1)
}

func TestSystemActivity_RequiresAuditVisibility(t *testing.T) {
	service, _ := newTestAuditService(t)

	_, err := service.SystemActivity(context.Background(), operatorPrincipal(), 7)

	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSystemActivity_RejectsNonPositiveWindow(t *testing.T) {
	service, _ := newTestAuditService(t)

	_, err := service.SystemActivity(context.Background(), adminPrincipal(), 0)

	assert.ErrorIs(t, err, ErrValidation)
}
