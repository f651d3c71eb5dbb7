package service

import (
	"context"
	"fmt"

	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	topMunicipalitiesLimit = 10
	monthsPerYear          = 12
)

// StatsCache is a read-through cache for dashboard statistics. Get returns
// (nil, nil) on a miss.
type StatsCache interface {
	GetStatistics(ctx context.Context, year int) (*models.OccurrenceStatistics, error)
	SetStatistics(ctx context.Context, stats *models.OccurrenceStatistics) error
	InvalidateStatistics(ctx context.Context, year int) error
}

// StatisticsService produces the occurrence dashboard.
type StatisticsService interface {
	OccurrenceStatistics(ctx context.Context, year int) (*models.OccurrenceStatistics, error)
}

type statisticsService struct {
	repo   OccurrenceRepository
	cache  StatsCache
	logger *logrus.Logger
}

func NewStatisticsService(repo OccurrenceRepository, cache StatsCache, logger *logrus.Logger) StatisticsService {
	return &statisticsService{repo: repo, cache: cache, logger: logger}
}

// OccurrenceStatistics aggregates the dashboard slices for the given year.
// Each slice is computed independently: a failed slice yields zeroed output
// and a warning, never an error, so one broken grouping query cannot take
// the whole dashboard down.
func (s *statisticsService) OccurrenceStatistics(ctx context.Context, year int) (*models.OccurrenceStatistics, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "statistics",
		"method":  "OccurrenceStatistics",
		"year":    year,
	})

	if year < 1900 || year > 9999 {
		return nil, fmt.Errorf("%w: year out of range", ErrValidation)
	}

	if cached, err := s.cache.GetStatistics(ctx, year); err != nil {
		log.WithError(err).Warn("Statistics cache read failed")
	} else if cached != nil {
		log.Debug("Statistics served from cache")
		return cached, nil
	}

	stats := &models.OccurrenceStatistics{Year: year}

	if raw, err := s.repo.CountByStatus(ctx, models.OccurrenceFilter{}); err != nil {
		log.WithError(err).Warn("Status slice failed, returning zeroed counts")
	} else {
		stats.ByStatus = s.foldStatusCounts(raw, log)
	}

	stats.ByType = map[string]int{}
	if raw, err := s.repo.CountByType(ctx); err != nil {
		log.WithError(err).Warn("Type slice failed, returning empty breakdown")
	} else {
		stats.ByType = s.foldTypeCounts(raw, log)
	}

	stats.TopMunicipalities = []models.MunicipalityCount{}
	if top, err := s.repo.TopMunicipalities(ctx, topMunicipalitiesLimit); err != nil {
		log.WithError(err).Warn("Municipality slice failed, returning empty ranking")
	} else {
		stats.TopMunicipalities = top
	}

	stats.Monthly = emptyMonthlySeries()
	if monthly, err := s.repo.MonthlyCounts(ctx, year); err != nil {
		log.WithError(err).Warn("Monthly slice failed, returning zeroed series")
	} else {
		stats.Monthly = fillMonthlySeries(monthly)
	}

	if err := s.cache.SetStatistics(ctx, stats); err != nil {
		log.WithError(err).Warn("Statistics cache write failed")
	}

	return stats, nil
}

func (s *statisticsService) foldStatusCounts(raw map[string]int, log *logrus.Entry) models.StatusCounts {
	var counts models.StatusCounts
	for status, n := range raw {
		counts.Total += n
		switch models.OccurrenceStatus(status) {
		case models.StatusOpen:
			counts.Open += n
		case models.StatusInProgress:
			counts.InProgress += n
		case models.StatusClosed:
			counts.Closed += n
		case models.StatusAlert:
			counts.Alert += n
		default:
			log.WithField("status", status).Warn("Unrecognized occurrence status in statistics, counted in total only")
		}
	}
	return counts
}

// foldTypeCounts buckets unrecognized types into "other", mirroring the
// lenient status handling.
func (s *statisticsService) foldTypeCounts(raw map[string]int, log *logrus.Entry) map[string]int {
	counts := map[string]int{
		string(models.TypeAccident):         0,
		string(models.TypeRescue):           0,
		string(models.TypeFire):             0,
		string(models.TypePedestrianStrike): 0,
		string(models.TypeOther):            0,
	}
	for typ, n := range raw {
		if models.ValidType(models.OccurrenceType(typ)) {
			counts[typ] += n
			continue
		}
		log.WithField("type", typ).Warn("Unrecognized occurrence type in statistics, bucketed as other")
		counts[string(models.TypeOther)] += n
	}
	return counts
}

func emptyMonthlySeries() []models.MonthlyCount {
	series := make([]models.MonthlyCount, monthsPerYear)
	for i := range series {
		series[i] = models.MonthlyCount{Month: i + 1}
	}
	return series
}

// fillMonthlySeries expands sparse month counts into a full 12-bucket series.
func fillMonthlySeries(monthly []models.MonthlyCount) []models.MonthlyCount {
	series := emptyMonthlySeries()
	for _, m := range monthly {
		if m.Month >= 1 && m.Month <= monthsPerYear {
			series[m.Month-1].Count = m.Count
		}
	}
	return series
}
