package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/shenikar/occurrence_reporting_system/internal/diff"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

// VehicleRepository defines the storage contract for response vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int) ([]*models.Vehicle, int, error)
}

// VehicleService covers fleet management.
type VehicleService interface {
	Create(ctx context.Context, p auth.Principal, vehicle *models.Vehicle) (*models.Vehicle, error)
	GetByID(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, p auth.Principal, page, limit int) ([]*models.Vehicle, int, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, update models.VehicleUpdate) (*models.Vehicle, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
}

type vehicleService struct {
	repo     VehicleRepository
	recorder AuditRecorder
	logger   *logrus.Logger
}

func NewVehicleService(repo VehicleRepository, recorder AuditRecorder, logger *logrus.Logger) VehicleService {
	return &vehicleService{repo: repo, recorder: recorder, logger: logger}
}

func vehicleAuditFields(v *models.Vehicle) map[string]any {
	return map[string]any{
		"plate":  v.Plate,
		"name":   v.Name,
		"active": v.Active,
	}
}

// Create registers a vehicle. Admin or supervisor only.
func (s *vehicleService) Create(ctx context.Context, p auth.Principal, vehicle *models.Vehicle) (*models.Vehicle, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "vehicle",
		"method":  "Create",
		"plate":   vehicle.Plate,
	})

	if !auth.CanManageFleet(p) {
		return nil, fmt.Errorf("%w: role %q may not manage vehicles", ErrPermissionDenied, p.Role)
	}
	if vehicle.Plate == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrValidation)
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		log.WithError(err).Error("Failed to create vehicle in repository")
		return nil, fmt.Errorf("service: could not create vehicle: %w", err)
	}

	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionCreate, models.EntityVehicle, &vehicle.ID, nil, map[string]any{
		"plate": vehicle.Plate,
	})

	log.WithField("vehicle_id", vehicle.ID).Info("Vehicle created")
	return vehicle, nil
}

// GetByID returns a single vehicle. Any authenticated caller may read the
// fleet, it is needed when assigning vehicles to occurrences.
func (s *vehicleService) GetByID(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get vehicle: %w", err)
	}
	return vehicle, nil
}

// List returns one page of vehicles.
func (s *vehicleService) List(ctx context.Context, p auth.Principal, page, limit int) ([]*models.Vehicle, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	vehicles, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list vehicles")
		return nil, 0, fmt.Errorf("service: could not list vehicles: %w", err)
	}
	return vehicles, total, nil
}

// Update applies a partial update and records a diff when tracked fields
// changed. Admin or supervisor only.
func (s *vehicleService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, update models.VehicleUpdate) (*models.Vehicle, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "vehicle",
		"method":     "Update",
		"vehicle_id": id,
	})

	if !auth.CanManageFleet(p) {
		return nil, fmt.Errorf("%w: role %q may not manage vehicles", ErrPermissionDenied, p.Role)
	}

	vehicle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent vehicle")
		return nil, fmt.Errorf("service: vehicle not found for update: %w", err)
	}

	before := vehicleAuditFields(vehicle)
	if update.Plate != nil {
		vehicle.Plate = *update.Plate
	}
	if update.Name != nil {
		vehicle.Name = *update.Name
	}
	if update.Active != nil {
		vehicle.Active = *update.Active
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		log.WithError(err).Error("Failed to update vehicle in repository")
		return nil, fmt.Errorf("service: could not update vehicle: %w", err)
	}

	changes := diff.Compute(models.EntityVehicle, before, vehicleAuditFields(vehicle))
	if len(changes) > 0 {
		actor := p.ID
		s.recorder.Record(ctx, &actor, models.ActionUpdate, models.EntityVehicle, &vehicle.ID, changes, nil)
	}

	log.WithField("changed_fields", len(changes)).Info("Vehicle updated")
	return vehicle, nil
}

// Delete removes a vehicle. Admin or supervisor only.
func (s *vehicleService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "vehicle",
		"method":     "Delete",
		"vehicle_id": id,
	})

	if !auth.CanDelete(p, models.EntityVehicle) {
		return fmt.Errorf("%w: role %q may not delete vehicles", ErrPermissionDenied, p.Role)
	}

	vehicle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to delete a non-existent vehicle")
		return fmt.Errorf("service: vehicle not found for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete vehicle in repository")
		return fmt.Errorf("service: could not delete vehicle: %w", err)
	}

	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionDelete, models.EntityVehicle, &id, nil, map[string]any{
		"plate": vehicle.Plate,
	})

	log.Info("Vehicle deleted")
	return nil
}
