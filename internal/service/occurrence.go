package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/shenikar/occurrence_reporting_system/internal/diff"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxDateRange    = 365 * 24 * time.Hour
)

// OccurrenceRepository defines the storage contract for occurrences. The
// aggregate methods share predicate semantics with List: CountByStatus must
// apply the same filter set minus pagination.
type OccurrenceRepository interface {
	Create(ctx context.Context, occ *models.Occurrence) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Occurrence, error)
	Update(ctx context.Context, occ *models.Occurrence) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.OccurrenceFilter) ([]*models.Occurrence, error)
	CountByStatus(ctx context.Context, filter models.OccurrenceFilter) (map[string]int, error)
	CountByType(ctx context.Context) (map[string]int, error)
	TopMunicipalities(ctx context.Context, limit int) ([]models.MunicipalityCount, error)
	MonthlyCounts(ctx context.Context, year int) ([]models.MonthlyCount, error)
}

// OccurrenceService defines the business logic for occurrence management.
type OccurrenceService interface {
	Create(ctx context.Context, p auth.Principal, occ *models.Occurrence) (*models.Occurrence, error)
	GetByID(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Occurrence, error)
	List(ctx context.Context, p auth.Principal, filter models.OccurrenceFilter) (*models.OccurrenceList, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, update models.OccurrenceUpdate) (*models.Occurrence, error)
	ChangeStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status models.OccurrenceStatus, reason string) (*models.Occurrence, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
	Export(ctx context.Context, p auth.Principal, filter models.OccurrenceFilter) ([]*models.Occurrence, error)
}

type occurrenceService struct {
	repo     OccurrenceRepository
	users    UserRepository
	vehicles VehicleRepository
	recorder AuditRecorder
	cache    StatsCache
	logger   *logrus.Logger
}

func NewOccurrenceService(repo OccurrenceRepository, users UserRepository, vehicles VehicleRepository, recorder AuditRecorder, cache StatsCache, logger *logrus.Logger) OccurrenceService {
	return &occurrenceService{
		repo:     repo,
		users:    users,
		vehicles: vehicles,
		recorder: recorder,
		cache:    cache,
		logger:   logger,
	}
}

// occurrenceAuditFields flattens an occurrence into the field map the diff
// engine compares. Keys must match the occurrence allow-list.
func occurrenceAuditFields(occ *models.Occurrence) map[string]any {
	vehicle := ""
	if occ.VehicleID != nil {
		vehicle = occ.VehicleID.String()
	}
	return map[string]any{
		"type":          string(occ.Type),
		"municipality":  occ.Municipality,
		"status":        string(occ.Status),
		"victimName":    occ.VictimName,
		"vehicleNumber": vehicle,
		"description":   occ.Description,
	}
}

// validateOccurrence checks field-level invariants on a fully assembled
// occurrence, before it reaches the repository.
func validateOccurrence(occ *models.Occurrence) error {
	if !models.ValidType(occ.Type) {
		return fmt.Errorf("%w: unknown occurrence type %q", ErrValidation, occ.Type)
	}
	if !models.ValidStatus(occ.Status) {
		return fmt.Errorf("%w: unknown occurrence status %q", ErrValidation, occ.Status)
	}
	if occ.Municipality == "" {
		return fmt.Errorf("%w: municipality is required", ErrValidation)
	}
	if occ.Latitude != nil && (*occ.Latitude < -90 || *occ.Latitude > 90) {
		return fmt.Errorf("%w: latitude out of range", ErrValidation)
	}
	if occ.Longitude != nil && (*occ.Longitude < -180 || *occ.Longitude > 180) {
		return fmt.Errorf("%w: longitude out of range", ErrValidation)
	}
	if !occ.ActivationDate.IsZero() && occ.ActivationDate.Before(occ.OccurrenceDate) {
		return fmt.Errorf("%w: activation date must not precede occurrence date", ErrValidation)
	}
	return nil
}

// validateFilter normalizes pagination defaults and enforces the query
// engine constraints.
func validateFilter(filter *models.OccurrenceFilter) error {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrValidation)
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, maxPageSize)
	}
	if filter.Type != nil && !models.ValidType(*filter.Type) {
		return fmt.Errorf("%w: unknown occurrence type %q", ErrValidation, *filter.Type)
	}
	if filter.Status != nil && !models.ValidStatus(*filter.Status) {
		return fmt.Errorf("%w: unknown occurrence status %q", ErrValidation, *filter.Status)
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		if filter.EndDate.Before(*filter.StartDate) {
			return fmt.Errorf("%w: end date precedes start date", ErrValidation)
		}
		if filter.EndDate.Sub(*filter.StartDate) > maxDateRange {
			return fmt.Errorf("%w: date range exceeds 365 days", ErrValidation)
		}
	}
	return nil
}

// Create registers a new occurrence on behalf of the authenticated principal.
func (s *occurrenceService) Create(ctx context.Context, p auth.Principal, occ *models.Occurrence) (*models.Occurrence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "occurrence",
		"method":       "Create",
		"principal_id": p.ID,
	})

	if occ.Status == "" {
		occ.Status = models.StatusOpen
	}
	occ.CreatedBy = p.ID
	if err := validateOccurrence(occ); err != nil {
		return nil, err
	}

	// The creator must exist at write time.
	if _, err := s.users.GetByID(ctx, p.ID); err != nil {
		log.WithError(err).Warn("Occurrence creator does not exist")
		return nil, fmt.Errorf("%w: creator account not found", ErrInvariantViolation)
	}

	if occ.VehicleID != nil {
		if _, err := s.vehicles.GetByID(ctx, *occ.VehicleID); err != nil {
			log.WithError(err).Warn("Assigned vehicle does not exist")
			return nil, fmt.Errorf("%w: assigned vehicle not found", ErrValidation)
		}
	}

	if err := s.repo.Create(ctx, occ); err != nil {
		log.WithError(err).Error("Failed to create occurrence in repository")
		return nil, fmt.Errorf("service: could not create occurrence: %w", err)
	}

	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionCreate, models.EntityOccurrence, &occ.ID, nil, map[string]any{
		"type":         string(occ.Type),
		"municipality": occ.Municipality,
	})
	s.invalidateStats(ctx, occ.OccurrenceDate.Year())

	log.WithField("occurrence_id", occ.ID).Info("Occurrence created")
	return occ, nil
}

// GetByID returns a single occurrence, honoring read permissions.
func (s *occurrenceService) GetByID(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Occurrence, error) {
	occ, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get occurrence: %w", err)
	}
	if !auth.CanRead(p, occ.CreatedBy) {
		return nil, fmt.Errorf("%w: occurrence belongs to another user", ErrPermissionDenied)
	}
	return occ, nil
}

// List returns one page of filtered occurrences plus status counts over the
// same filtered population. Non-privileged callers are narrowed to their own
// records regardless of what the filter asked for.
func (s *occurrenceService) List(ctx context.Context, p auth.Principal, filter models.OccurrenceFilter) (*models.OccurrenceList, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "occurrence",
		"method":  "List",
	})

	if err := validateFilter(&filter); err != nil {
		return nil, err
	}
	if owner := auth.VisibilityFilter(p); owner != nil {
		filter.CreatedBy = owner
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list occurrences from repository")
		return nil, fmt.Errorf("service: could not list occurrences: %w", err)
	}

	raw, err := s.repo.CountByStatus(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to count occurrences by status")
		return nil, fmt.Errorf("service: could not count occurrences: %w", err)
	}
	counts := s.buildStatusCounts(raw, log)

	return &models.OccurrenceList{
		Items:        items,
		StatusCounts: counts,
		Page:         filter.Page,
		Limit:        filter.Limit,
		Total:        counts.Total,
	}, nil
}

// buildStatusCounts folds raw per-status counts into typed counters. Rows
// whose stored status is not a known enum member still count toward Total,
// so legacy data never crashes a listing.
func (s *occurrenceService) buildStatusCounts(raw map[string]int, log *logrus.Entry) models.StatusCounts {
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
			log.WithField("status", status).Warn("Unrecognized occurrence status in store, counted in total only")
		}
	}
	return counts
}

// Update applies a partial update and records an audit entry when any
// tracked field actually changed. A no-op update writes no audit entry.
func (s *occurrenceService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, update models.OccurrenceUpdate) (*models.Occurrence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "occurrence",
		"method":        "Update",
		"occurrence_id": id,
	})

	occ, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent occurrence")
		return nil, fmt.Errorf("service: occurrence not found for update: %w", err)
	}
	if !auth.CanWrite(p, occ.CreatedBy) {
		return nil, fmt.Errorf("%w: occurrence belongs to another user", ErrPermissionDenied)
	}

	before := occurrenceAuditFields(occ)
	oldYear := occ.OccurrenceDate.Year()
	applyOccurrenceUpdate(occ, update)
	if err := validateOccurrence(occ); err != nil {
		return nil, err
	}

	if update.VehicleID != nil {
		if _, err := s.vehicles.GetByID(ctx, *update.VehicleID); err != nil {
			return nil, fmt.Errorf("%w: assigned vehicle not found", ErrValidation)
		}
	}

	if err := s.repo.Update(ctx, occ); err != nil {
		log.WithError(err).Error("Failed to update occurrence in repository")
		return nil, fmt.Errorf("service: could not update occurrence: %w", err)
	}

	changes := diff.Compute(models.EntityOccurrence, before, occurrenceAuditFields(occ))
	if len(changes) > 0 {
		actor := p.ID
		s.recorder.Record(ctx, &actor, models.ActionUpdate, models.EntityOccurrence, &occ.ID, changes, nil)
	}
	s.invalidateStats(ctx, oldYear)
	if occ.OccurrenceDate.Year() != oldYear {
		s.invalidateStats(ctx, occ.OccurrenceDate.Year())
	}

	log.WithField("changed_fields", len(changes)).Info("Occurrence updated")
	return occ, nil
}

// ChangeStatus transitions an occurrence to a new status. Any status may
// transition to any other; only write permission gates the change. The
// optional reason is kept in the audit details.
func (s *occurrenceService) ChangeStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status models.OccurrenceStatus, reason string) (*models.Occurrence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "occurrence",
		"method":        "ChangeStatus",
		"occurrence_id": id,
		"status":        status,
	})

	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown occurrence status %q", ErrValidation, status)
	}

	occ, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to change status of a non-existent occurrence")
		return nil, fmt.Errorf("service: occurrence not found for status change: %w", err)
	}
	if !auth.CanWrite(p, occ.CreatedBy) {
		return nil, fmt.Errorf("%w: occurrence belongs to another user", ErrPermissionDenied)
	}

	if occ.Status == status {
		// Idempotent transition: nothing to persist, nothing to audit.
		return occ, nil
	}

	before := occurrenceAuditFields(occ)
	occ.Status = status
	if err := s.repo.Update(ctx, occ); err != nil {
		log.WithError(err).Error("Failed to persist status change")
		return nil, fmt.Errorf("service: could not change occurrence status: %w", err)
	}

	changes := diff.Compute(models.EntityOccurrence, before, occurrenceAuditFields(occ))
	var details map[string]any
	if reason != "" {
		details = map[string]any{"reason": reason}
	}
	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionUpdate, models.EntityOccurrence, &occ.ID, changes, details)
	s.invalidateStats(ctx, occ.OccurrenceDate.Year())

	log.Info("Occurrence status changed")
	return occ, nil
}

// Delete removes an occurrence. Admin or supervisor only.
func (s *occurrenceService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "occurrence",
		"method":        "Delete",
		"occurrence_id": id,
	})

	if !auth.CanDelete(p, models.EntityOccurrence) {
		return fmt.Errorf("%w: role %q may not delete occurrences", ErrPermissionDenied, p.Role)
	}

	occ, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to delete a non-existent occurrence")
		return fmt.Errorf("service: occurrence not found for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete occurrence in repository")
		return fmt.Errorf("service: could not delete occurrence: %w", err)
	}

	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionDelete, models.EntityOccurrence, &id, nil, nil)
	s.invalidateStats(ctx, occ.OccurrenceDate.Year())

	log.Info("Occurrence deleted")
	return nil
}

// Export returns the full filtered result set without pagination and records
// a download action in the audit trail.
func (s *occurrenceService) Export(ctx context.Context, p auth.Principal, filter models.OccurrenceFilter) ([]*models.Occurrence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "occurrence",
		"method":  "Export",
	})

	if err := validateFilter(&filter); err != nil {
		return nil, err
	}
	if owner := auth.VisibilityFilter(p); owner != nil {
		filter.CreatedBy = owner
	}
	// Limit <= 0 tells the repository to skip pagination entirely.
	filter.Page = 1
	filter.Limit = 0

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to export occurrences from repository")
		return nil, fmt.Errorf("service: could not export occurrences: %w", err)
	}

	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionDownload, models.EntityReport, nil, nil, map[string]any{
		"count": len(items),
	})

	log.WithField("count", len(items)).Info("Occurrences exported")
	return items, nil
}

func (s *occurrenceService) invalidateStats(ctx context.Context, year int) {
	if err := s.cache.InvalidateStatistics(ctx, year); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate statistics cache")
	}
}

// applyOccurrenceUpdate copies the provided fields onto occ.
func applyOccurrenceUpdate(occ *models.Occurrence, update models.OccurrenceUpdate) {
	if update.Type != nil {
		occ.Type = *update.Type
	}
	if update.Status != nil {
		occ.Status = *update.Status
	}
	if update.Municipality != nil {
		occ.Municipality = *update.Municipality
	}
	if update.Neighborhood != nil {
		occ.Neighborhood = *update.Neighborhood
	}
	if update.Address != nil {
		occ.Address = *update.Address
	}
	if update.Latitude != nil {
		occ.Latitude = update.Latitude
	}
	if update.Longitude != nil {
		occ.Longitude = update.Longitude
	}
	if update.OccurrenceDate != nil {
		occ.OccurrenceDate = *update.OccurrenceDate
	}
	if update.ActivationDate != nil {
		occ.ActivationDate = *update.ActivationDate
	}
	if update.VictimName != nil {
		occ.VictimName = *update.VictimName
	}
	if update.VictimContact != nil {
		occ.VictimContact = *update.VictimContact
	}
	if update.VehicleID != nil {
		occ.VehicleID = update.VehicleID
	}
	if update.Description != nil {
		occ.Description = *update.Description
	}
}
