package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
)

type VehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) service.VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (plate, name, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, vehicle.Plate, vehicle.Name, vehicle.Active).
		Scan(&vehicle.ID, &vehicle.CreatedAt, &vehicle.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: plate %s already registered", service.ErrConflict, vehicle.Plate)
		}
		return fmt.Errorf("%w: failed to create vehicle: %v", service.ErrStorage, err)
	}
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	query := `SELECT id, plate, name, active, created_at, updated_at FROM vehicles WHERE id = $1;`

	vehicle := &models.Vehicle{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.Plate,
		&vehicle.Name,
		&vehicle.Active,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle %s", service.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get vehicle by id: %v", service.ErrStorage, err)
	}
	return vehicle, nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		UPDATE vehicles SET
			plate = $1,
			name = $2,
			active = $3,
			updated_at = NOW()
		WHERE id = $4;
	`
	cmdTag, err := r.db.Exec(ctx, query, vehicle.Plate, vehicle.Name, vehicle.Active, vehicle.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: plate %s already registered", service.ErrConflict, vehicle.Plate)
		}
		return fmt.Errorf("%w: failed to update vehicle: %v", service.ErrStorage, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: vehicle %s", service.ErrNotFound, vehicle.ID)
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete vehicle: %v", service.ErrStorage, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: vehicle %s", service.ErrNotFound, id)
	}
	return nil
}

// List returns one page of vehicles ordered by plate, plus the total count.
func (r *VehicleRepository) List(ctx context.Context, page, limit int) ([]*models.Vehicle, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to count vehicles: %v", service.ErrStorage, err)
	}

	offset := (page - 1) * limit
	query := `
		SELECT id, plate, name, active, created_at, updated_at
		FROM vehicles
		ORDER BY plate ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to list vehicles: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	vehicles := make([]*models.Vehicle, 0)
	for rows.Next() {
		vehicle := &models.Vehicle{}
		err := rows.Scan(
			&vehicle.ID,
			&vehicle.Plate,
			&vehicle.Name,
			&vehicle.Active,
			&vehicle.CreatedAt,
			&vehicle.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan vehicle row: %v", service.ErrStorage, err)
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: error in vehicle list iteration: %v", service.ErrStorage, err)
	}
	return vehicles, total, nil
}
