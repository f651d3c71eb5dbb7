package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

const topActorsLimit = 10

// AuditRepository defines the storage contract for the append-only audit
// trail. There is deliberately no update or delete.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLogEntry, int, error)
	CountByAction(ctx context.Context, since time.Time) (map[string]int, error)
	TopActors(ctx context.Context, since time.Time, limit int) ([]models.ActorActivity, error)
}

// AuditRecorder is the write side of the audit trail, consumed by every
// mutating use case. Recorder failures never fail the triggering mutation:
// the error is logged and swallowed.
type AuditRecorder interface {
	Record(ctx context.Context, actor *uuid.UUID, action models.AuditAction, entity models.AuditEntity, entityID *uuid.UUID, changes map[string]models.FieldChange, details map[string]any)
}

// AuditService is the full audit trail contract: the recorder plus the
// permission-narrowed read side.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, p auth.Principal, filter models.AuditFilter) ([]*models.AuditLogEntry, int, error)
	UserActivity(ctx context.Context, p auth.Principal, userID uuid.UUID, page, limit int) ([]*models.AuditLogEntry, int, error)
	SystemActivity(ctx context.Context, p auth.Principal, days int) (*models.SystemActivity, error)
}

type auditService struct {
	repo   AuditRepository
	logger *logrus.Logger
}

func NewAuditService(repo AuditRepository, logger *logrus.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

// Record appends one entry to the audit trail. A storage failure here does
// not roll back the mutation that triggered it; the entry is lost and the
// failure is logged as an error.
func (s *auditService) Record(ctx context.Context, actor *uuid.UUID, action models.AuditAction, entity models.AuditEntity, entityID *uuid.UUID, changes map[string]models.FieldChange, details map[string]any) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "audit",
		"method":  "Record",
		"action":  action,
		"entity":  entity,
	})

	entry := &models.AuditLogEntry{
		UserID:   actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Changes:  changes,
		Details:  details,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to write audit log entry, trail record lost")
		return
	}
	log.WithField("entry_id", entry.ID).Debug("Audit entry recorded")
}

// List returns audit entries newest-first. Non-privileged callers are
// forced onto their own entries regardless of the requested actor filter.
func (s *auditService) List(ctx context.Context, p auth.Principal, filter models.AuditFilter) ([]*models.AuditLogEntry, int, error) {
	if err := validateAuditFilter(&filter); err != nil {
		return nil, 0, err
	}
	if !auth.CanViewAllAudit(p) {
		self := p.ID
		filter.UserID = &self
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list audit log entries")
		return nil, 0, fmt.Errorf("service: could not list audit entries: %w", err)
	}
	return entries, total, nil
}

// UserActivity returns the audit entries of one actor. Callers may always
// see their own activity; anyone else's requires audit-wide visibility.
func (s *auditService) UserActivity(ctx context.Context, p auth.Principal, userID uuid.UUID, page, limit int) ([]*models.AuditLogEntry, int, error) {
	if userID != p.ID && !auth.CanViewAllAudit(p) {
		return nil, 0, fmt.Errorf("%w: cannot view another user's activity", ErrPermissionDenied)
	}

	filter := models.AuditFilter{UserID: &userID, Page: page, Limit: limit}
	if err := validateAuditFilter(&filter); err != nil {
		return nil, 0, err
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch user activity")
		return nil, 0, fmt.Errorf("service: could not fetch user activity: %w", err)
	}
	return entries, total, nil
}

// SystemActivity summarizes the trail over the trailing window: total action
// count, counts per action type and the most active users.
func (s *auditService) SystemActivity(ctx context.Context, p auth.Principal, days int) (*models.SystemActivity, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "audit",
		"method":  "SystemActivity",
		"days":    days,
	})

	if !auth.CanViewAllAudit(p) {
		return nil, fmt.Errorf("%w: system activity requires audit visibility", ErrPermissionDenied)
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be >= 1", ErrValidation)
	}

	since := time.Now().AddDate(0, 0, -days)

	byAction, err := s.repo.CountByAction(ctx, since)
	if err != nil {
		log.WithError(err).Error("Failed to count audit actions")
		return nil, fmt.Errorf("service: could not summarize system activity: %w", err)
	}
	total := 0
	for _, n := range byAction {
		total += n
	}

	topUsers, err := s.repo.TopActors(ctx, since, topActorsLimit)
	if err != nil {
		log.WithError(err).Error("Failed to rank audit actors")
		return nil, fmt.Errorf("service: could not summarize system activity: %w", err)
	}

	return &models.SystemActivity{
		Days:         days,
		TotalActions: total,
		ByAction:     byAction,
		TopUsers:     topUsers,
	}, nil
}

func validateAuditFilter(filter *models.AuditFilter) error {
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
	if filter.Action != nil && !models.ValidAuditAction(*filter.Action) {
		return fmt.Errorf("%w: unknown audit action %q", ErrValidation, *filter.Action)
	}
	if filter.Entity != nil && !models.ValidAuditEntity(*filter.Entity) {
		return fmt.Errorf("%w: unknown audit entity %q", ErrValidation, *filter.Entity)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrValidation)
	}
	return nil
}
