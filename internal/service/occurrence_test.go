package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type occurrenceServiceMocks struct {
	repo     *mocks.MockOccurrenceRepository
	users    *mocks.MockUserRepository
	vehicles *mocks.MockVehicleRepository
	recorder *mocks.MockAuditRecorder
	cache    *mocks.MockStatsCache
}

// newTestOccurrenceService builds a service instance backed by mocks.
func newTestOccurrenceService(t *testing.T) (*occurrenceService, occurrenceServiceMocks) {
	ctrl := gomock.NewController(t)
	m := occurrenceServiceMocks{
		repo:     mocks.NewMockOccurrenceRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		vehicles: mocks.NewMockVehicleRepository(ctrl),
		recorder: mocks.NewMockAuditRecorder(ctrl),
		cache:    mocks.NewMockStatsCache(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Silence logs during tests

	service := NewOccurrenceService(m.repo, m.users, m.vehicles, m.recorder, m.cache, logger)
	return service.(*occurrenceService), m
}

func adminPrincipal() auth.Principal {
	return auth.Principal{ID: uuid.New(), Role: models.RoleAdmin}
}

func operatorPrincipal() auth.Principal {
	return auth.Principal{ID: uuid.New(), Role: models.RoleOperator}
}

func testOccurrence(createdBy uuid.UUID) *models.Occurrence {
	return &models.Occurrence{
		ID:             uuid.New(),
		Type:           models.TypeAccident,
		Status:         models.StatusOpen,
		Municipality:   "Niteroi",
		OccurrenceDate: time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC),
		CreatedBy:      createdBy,
	}
}

func TestOccurrenceCreate_Success(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()

	occ := &models.Occurrence{
		Type:           models.TypeFire,
		Municipality:   "Niteroi",
		OccurrenceDate: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	m.users.EXPECT().
		GetByID(ctx, p.ID).
		Return(&models.User{ID: p.ID}, nil).
		Times(1)

	m.repo.EXPECT().
		Create(ctx, occ).
		Return(nil).
		Times(1)

	m.recorder.EXPECT().
		Record(ctx, gomock.Any(), models.ActionCreate, models.EntityOccurrence, gomock.Any(), nil, gomock.Any()).
		Times(1)

	m.cache.EXPECT().
		InvalidateStatistics(ctx, 2024).
		Return(nil).
		Times(1)

	created, err := service.Create(ctx, p, occ)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, created.Status, "missing status defaults to open")
	assert.Equal(t, p.ID, created.CreatedBy, "createdBy comes from the principal, not the payload")
}

func TestOccurrenceCreate_UnknownTypeRejected(t *testing.T) {
	service, _ := newTestOccurrenceService(t)
	p := operatorPrincipal()

	occ := &models.Occurrence{
		Type:           models.OccurrenceType("earthquake"),
		Municipality:   "Niteroi",
		OccurrenceDate: time.Now(),
	}

	_, err := service.Create(context.Background(), p, occ)

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOccurrenceCreate_MissingCreatorIsInvariantViolation(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()

	occ := &models.Occurrence{
		Type:           models.TypeRescue,
		Municipality:   "Niteroi",
		OccurrenceDate: time.Now(),
	}

	m.users.EXPECT().
		GetByID(ctx, p.ID).
		Return(nil, fmt.Errorf("not found")).
		Times(1)

	_, err := service.Create(ctx, p, occ)

	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestOccurrenceCreate_UnknownVehicleRejected(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()
	vehicleID := uuid.New()

	occ := &models.Occurrence{
		Type:           models.TypeAccident,
		Municipality:   "Niteroi",
		OccurrenceDate: time.Now(),
		VehicleID:      &vehicleID,
	}

	m.users.EXPECT().
		GetByID(ctx, p.ID).
		Return(&models.User{ID: p.ID}, nil).
		Times(1)

	m.vehicles.EXPECT().
		GetByID(ctx, vehicleID).
		Return(nil, fmt.Errorf("not found")).
		Times(1)

	_, err := service.Create(ctx, p, occ)

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOccurrenceGetByID_OwnerMayRead(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()
	occ := testOccurrence(p.ID)

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	got, err := service.GetByID(ctx, p, occ.ID)

	require.NoError(t, err)
	assert.Equal(t, occ, got)
}

func TestOccurrenceGetByID_ForeignRecordDenied(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()
	occ := testOccurrence(uuid.New())

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	_, err := service.GetByID(ctx, p, occ.ID)

	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestOccurrenceList_NarrowsUnprivilegedToOwnRecords(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()

	var seenFilter models.OccurrenceFilter
	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.OccurrenceFilter) ([]*models.Occurrence, error) {
			seenFilter = filter
			return []*models.Occurrence{testOccurrence(p.ID)}, nil
		}).Times(1)

	m.repo.EXPECT().
		CountByStatus(ctx, gomock.Any()).
		Return(map[string]int{"open": 1}, nil).
		Times(1)

	// The client asks for someone else's records; the server overrides it.
	foreign := uuid.New()
	_, err := service.List(ctx, p, models.OccurrenceFilter{CreatedBy: &foreign})

	require.NoError(t, err)
	require.NotNil(t, seenFilter.CreatedBy)
	assert.Equal(t, p.ID, *seenFilter.CreatedBy)
}

func TestOccurrenceList_StatusCountsSumInvariant(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		Return([]*models.Occurrence{}, nil).
		Times(1)

	m.repo.EXPECT().
		CountByStatus(ctx, gomock.Any()).
		Return(map[string]int{
			"open":        3,
			"in-progress": 2,
			"closed":      5,
			"alert":       1,
		}, nil).
		Times(1)

	list, err := service.List(ctx, p, models.OccurrenceFilter{})

	require.NoError(t, err)
	counts := list.StatusCounts
	assert.Equal(t, 3, counts.Open)
	assert.Equal(t, 2, counts.InProgress)
	assert.Equal(t, 5, counts.Closed)
	assert.Equal(t, 1, counts.Alert)
	assert.Equal(t, counts.Open+counts.InProgress+counts.Closed+counts.Alert, counts.Total)
	assert.Equal(t, counts.Total, list.Total)
}

func TestOccurrenceList_UnknownStoredStatusCountsTowardTotalOnly(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		Return([]*models.Occurrence{}, nil).
		Times(1)

	m.repo.EXPECT().
		CountByStatus(ctx, gomock.Any()).
		Return(map[string]int{
			"open":     2,
			"archived": 4, // legacy status no longer in the enum
		}, nil).
		Times(1)

	list, err := service.List(ctx, p, models.OccurrenceFilter{})

	require.NoError(t, err)
	assert.Equal(t, 2, list.StatusCounts.Open)
	assert.Equal(t, 6, list.StatusCounts.Total)
}

func TestOccurrenceList_DefaultsPagination(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()

	var seenFilter models.OccurrenceFilter
	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.OccurrenceFilter) ([]*models.Occurrence, error) {
			seenFilter = filter
			return nil, nil
		}).Times(1)

	m.repo.EXPECT().
		CountByStatus(ctx, gomock.Any()).
		Return(map[string]int{}, nil).
		Times(1)

	list, err := service.List(ctx, p, models.OccurrenceFilter{})

	require.NoError(t, err)
	assert.Equal(t, 1, seenFilter.Page)
	assert.Equal(t, defaultPageSize, seenFilter.Limit)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, defaultPageSize, list.Limit)
}

func TestOccurrenceList_RejectsOversizedPage(t *testing.T) {
	service, _ := newTestOccurrenceService(t)

	_, err := service.List(context.Background(), adminPrincipal(), models.OccurrenceFilter{Limit: maxPageSize + 1})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOccurrenceList_RejectsDateRangeOverAYear(t *testing.T) {
	service, _ := newTestOccurrenceService(t)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(maxDateRange + time.Hour)

	_, err := service.List(context.Background(), adminPrincipal(), models.OccurrenceFilter{
		StartDate: &start,
		EndDate:   &end,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOccurrenceUpdate_RecordsFieldDiff(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()
	occ := testOccurrence(uuid.New())

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	m.repo.EXPECT().
		Update(ctx, gomock.Any()).
		Return(nil).
		Times(1)

	var seenChanges map[string]models.FieldChange
	m.recorder.EXPECT().
		Record(ctx, gomock.Any(), models.ActionUpdate, models.EntityOccurrence, gomock.Any(), gomock.Any(), nil).
		Do(func(_ context.Context, _ *uuid.UUID, _ models.AuditAction, _ models.AuditEntity, _ *uuid.UUID, changes map[string]models.FieldChange, _ map[string]any) {
			seenChanges = changes
		}).Times(1)

	m.cache.EXPECT().
		InvalidateStatistics(ctx, occ.OccurrenceDate.Year()).
		Return(nil).
		Times(1)

	newMunicipality := "Maricá"
	updated, err := service.Update(ctx, p, occ.ID, models.OccurrenceUpdate{Municipality: &newMunicipality})

	require.NoError(t, err)
	assert.Equal(t, newMunicipality, updated.Municipality)
	require.Len(t, seenChanges, 1)
	assert.Equal(t, models.FieldChange{From: "Niteroi", To: "Maricá"}, seenChanges["municipality"])
}

func TestOccurrenceUpdate_NoopWritesNoAuditEntry(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()
	occ := testOccurrence(uuid.New())

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	m.repo.EXPECT().
		Update(ctx, gomock.Any()).
		Return(nil).
		Times(1)

	m.cache.EXPECT().
		InvalidateStatistics(ctx, occ.OccurrenceDate.Year()).
		Return(nil).
		Times(1)

	// Same value as stored: the recorder must not be called at all.
	sameMunicipality := occ.Municipality
	_, err := service.Update(ctx, p, occ.ID, models.OccurrenceUpdate{Municipality: &sameMunicipality})

	require.NoError(t, err)
}

func TestOccurrenceUpdate_ForeignRecordDeniedForUnprivileged(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()
	occ := testOccurrence(uuid.New())

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	status := models.StatusClosed
	_, err := service.Update(ctx, p, occ.ID, models.OccurrenceUpdate{Status: &status})

	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestOccurrenceUpdate_MovingYearInvalidatesBothYears(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()
	occ := testOccurrence(uuid.New()) // 2024

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	m.repo.EXPECT().
		Update(ctx, gomock.Any()).
		Return(nil).
		Times(1)

	m.cache.EXPECT().InvalidateStatistics(ctx, 2024).Return(nil).Times(1)
	m.cache.EXPECT().InvalidateStatistics(ctx, 2025).Return(nil).Times(1)

	newDate := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)
	_, err := service.Update(ctx, p, occ.ID, models.OccurrenceUpdate{OccurrenceDate: &newDate})

	require.NoError(t, err)
}

func TestChangeStatus_TransitionRecordsReason(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()
	occ := testOccurrence(uuid.New())

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	m.repo.EXPECT().
		Update(ctx, gomock.Any()).
		Return(nil).
		Times(1)

	var seenDetails map[string]any
	m.recorder.EXPECT().
		Record(ctx, gomock.Any(), models.ActionUpdate, models.EntityOccurrence, gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, _ *uuid.UUID, _ models.AuditAction, _ models.AuditEntity, _ *uuid.UUID, _ map[string]models.FieldChange, details map[string]any) {
			seenDetails = details
		}).Times(1)

	m.cache.EXPECT().
		InvalidateStatistics(ctx, occ.OccurrenceDate.Year()).
		Return(nil).
		Times(1)

	updated, err := service.ChangeStatus(ctx, p, occ.ID, models.StatusClosed, "victim transported")

	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, updated.Status)
	assert.Equal(t, map[string]any{"reason": "victim transported"}, seenDetails)
}

func TestChangeStatus_SameStatusIsIdempotentNoop(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()
	occ := testOccurrence(uuid.New())

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	// No Update, no Record, no cache invalidation.
	updated, err := service.ChangeStatus(ctx, p, occ.ID, occ.Status, "")

	require.NoError(t, err)
	assert.Equal(t, occ.Status, updated.Status)
}

func TestChangeStatus_UnknownStatusRejected(t *testing.T) {
	service, _ := newTestOccurrenceService(t)

	_, err := service.ChangeStatus(context.Background(), adminPrincipal(), uuid.New(), models.OccurrenceStatus("archived"), "")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOccurrenceDelete_RequiresDeleteRights(t *testing.T) {
	service, _ := newTestOccurrenceService(t)

	err := service.Delete(context.Background(), operatorPrincipal(), uuid.New())

	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestOccurrenceDelete_Success(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()
	occ := testOccurrence(uuid.New())

	m.repo.EXPECT().
		GetByID(ctx, occ.ID).
		Return(occ, nil).
		Times(1)

	m.repo.EXPECT().
		Delete(ctx, occ.ID).
		Return(nil).
		Times(1)

	m.recorder.EXPECT().
		Record(ctx, gomock.Any(), models.ActionDelete, models.EntityOccurrence, gomock.Any(), nil, nil).
		Times(1)

	m.cache.EXPECT().
		InvalidateStatistics(ctx, occ.OccurrenceDate.Year()).
		Return(nil).
		Times(1)

	err := service.Delete(ctx, p, occ.ID)

	require.NoError(t, err)
}

func TestExport_SkipsPaginationAndAuditsDownload(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := adminPrincipal()

	var seenFilter models.OccurrenceFilter
	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.OccurrenceFilter) ([]*models.Occurrence, error) {
			seenFilter = filter
			return []*models.Occurrence{testOccurrence(p.ID), testOccurrence(p.ID)}, nil
		}).Times(1)

	m.recorder.EXPECT().
		Record(ctx, gomock.Any(), models.ActionDownload, models.EntityReport, nil, nil, map[string]any{"count": 2}).
		Times(1)

	items, err := service.Export(ctx, p, models.OccurrenceFilter{})

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Zero(t, seenFilter.Limit, "export must not paginate")
}

func TestExport_NarrowsUnprivilegedToOwnRecords(t *testing.T) {
	service, m := newTestOccurrenceService(t)
	ctx := context.Background()
	p := operatorPrincipal()

	var seenFilter models.OccurrenceFilter
	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.OccurrenceFilter) ([]*models.Occurrence, error) {
			seenFilter = filter
			return nil, nil
		}).Times(1)

	m.recorder.EXPECT().
		Record(ctx, gomock.Any(), models.ActionDownload, models.EntityReport, nil, nil, gomock.Any()).
		Times(1)

	_, err := service.Export(ctx, p, models.OccurrenceFilter{})

	require.NoError(t, err)
	require.NotNil(t, seenFilter.CreatedBy)
	assert.Equal(t, p.ID, *seenFilter.CreatedBy)
}
