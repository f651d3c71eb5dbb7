package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestStatisticsService builds a service instance backed by mocks.
func newTestStatisticsService(t *testing.T) (*statisticsService, *mocks.MockOccurrenceRepository, *mocks.MockStatsCache) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockOccurrenceRepository(ctrl)
	cacheMock := mocks.NewMockStatsCache(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Silence logs during tests

	service := NewStatisticsService(repoMock, cacheMock, logger)
	return service.(*statisticsService), repoMock, cacheMock
}

func TestOccurrenceStatistics_ServedFromCache(t *testing.T) {
	service, _, cacheMock := newTestStatisticsService(t)
	ctx := context.Background()

	cached := &models.OccurrenceStatistics{Year: 2024, ByType: map[string]int{"fire": 3}}

	cacheMock.EXPECT().
		GetStatistics(ctx, 2024).
		Return(cached, nil).
		Times(1)

	stats, err := service.OccurrenceStatistics(ctx, 2024)

	require.NoError(t, err)
	assert.Equal(t, cached, stats)
}

func TestOccurrenceStatistics_ComputesAndCachesOnMiss(t *testing.T) {
	service, repoMock, cacheMock := newTestStatisticsService(t)
	ctx := context.Background()

	cacheMock.EXPECT().
		GetStatistics(ctx, 2024).
		Return(nil, nil).
		Times(1)

	repoMock.EXPECT().
		CountByStatus(ctx, gomock.Any()).
		Return(map[string]int{"open": 2, "closed": 1}, nil).
		Times(1)

	repoMock.EXPECT().
		CountByType(ctx).
		Return(map[string]int{"fire": 2, "accident": 1}, nil).
		Times(1)

	repoMock.EXPECT().
		TopMunicipalities(ctx, gomock.Any()).
		Return([]models.MunicipalityCount{{Municipality: "Niteroi", Count: 3}}, nil).
		Times(1)

	repoMock.EXPECT().
		MonthlyCounts(ctx, 2024).
		Return([]models.MonthlyCount{{Month: 3, Count: 2}, {Month: 7, Count: 1}}, nil).
		Times(1)

	cacheMock.EXPECT().
		SetStatistics(ctx, gomock.Any()).
		Return(nil).
		Times(1)

	stats, err := service.OccurrenceStatistics(ctx, 2024)

	require.NoError(t, err)
	assert.Equal(t, 2024, stats.Year)
	assert.Equal(t, 2, stats.ByStatus.Open)
	assert.Equal(t, 1, stats.ByStatus.Closed)
	assert.Equal(t, 3, stats.ByStatus.Total)
	assert.Equal(t, 2, stats.ByType["fire"])

	require.Len(t, stats.Monthly, 12, "monthly series always has twelve buckets")
	assert.Equal(t, 2, stats.Monthly[2].Count)
	assert.Equal(t, 1, stats.Monthly[6].Count)
	assert.Equal(t, 0, stats.Monthly[0].Count)
}

func TestOccurrenceStatistics_UnknownTypeBucketedAsOther(t *testing.T) {
	service, repoMock, cacheMock := newTestStatisticsService(t)
	ctx := context.Background()

	cacheMock.EXPECT().GetStatistics(ctx, 2024).Return(nil, nil).Times(1)
	repoMock.EXPECT().CountByStatus(ctx, gomock.Any()).Return(map[string]int{}, nil).Times(1)
	repoMock.EXPECT().
		CountByType(ctx).
		Return(map[string]int{"meteor": 2, "other": 1}, nil).
		Times(1)
	repoMock.EXPECT().TopMunicipalities(ctx, gomock.Any()).Return(nil, nil).Times(1)
	repoMock.EXPECT().MonthlyCounts(ctx, 2024).Return(nil, nil).Times(1)
	cacheMock.EXPECT().SetStatistics(ctx, gomock.Any()).Return(nil).Times(1)

	stats, err := service.OccurrenceStatistics(ctx, 2024)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.ByType["other"])
	assert.NotContains(t, stats.ByType, "meteor")
}

func TestOccurrenceStatistics_FailedSliceIsZeroedNotFatal(t *testing.T) {
	service, repoMock, cacheMock := newTestStatisticsService(t)
	ctx := context.Background()

	cacheMock.EXPECT().GetStatistics(ctx, 2024).Return(nil, nil).Times(1)

	// The status slice fails; the rest of the dashboard still comes back.
	repoMock.EXPECT().
		CountByStatus(ctx, gomock.Any()).
		Return(nil, fmt.Errorf("db timeout")).
		Times(1)
	repoMock.EXPECT().
		CountByType(ctx).
		Return(map[string]int{"fire": 1}, nil).
		Times(1)
	repoMock.EXPECT().TopMunicipalities(ctx, gomock.Any()).Return(nil, nil).Times(1)
	repoMock.EXPECT().MonthlyCounts(ctx, 2024).Return(nil, nil).Times(1)
	cacheMock.EXPECT().SetStatistics(ctx, gomock.Any()).Return(nil).Times(1)

	stats, err := service.OccurrenceStatistics(ctx, 2024)

	require.NoError(t, err)
	assert.Zero(t, stats.ByStatus.Total)
	assert.Equal(t, 1, stats.ByType["fire"])
}

func TestOccurrenceStatistics_CacheFailureFallsThroughToRepo(t *testing.T) {
	service, repoMock, cacheMock := newTestStatisticsService(t)
	ctx := context.Background()

	cacheMock.EXPECT().
		GetStatistics(ctx, 2024).
		Return(nil, fmt.Errorf("redis down")).
		Times(1)

	repoMock.EXPECT().CountByStatus(ctx, gomock.Any()).Return(map[string]int{}, nil).Times(1)
	repoMock.EXPECT().CountByType(ctx).Return(map[string]int{}, nil).Times(1)
	repoMock.EXPECT().TopMunicipalities(ctx, gomock.Any()).Return(nil, nil).Times(1)
	repoMock.EXPECT().MonthlyCounts(ctx, 2024).Return(nil, nil).Times(1)

	cacheMock.EXPECT().
		SetStatistics(ctx, gomock.Any()).
		Return(fmt.Errorf("redis down")).
		Times(1)

	stats, err := service.OccurrenceStatistics(ctx, 2024)

	require.NoError(t, err)
	assert.Equal(t, 2024, stats.Year)
}

func TestOccurrenceStatistics_YearOutOfRange(t *testing.T) {
	service, _, _ := newTestStatisticsService(t)

	_, err := service.OccurrenceStatistics(context.Background(), 1899)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.OccurrenceStatistics(context.Background(), 10000)
	assert.ErrorIs(t, err, ErrValidation)
}
