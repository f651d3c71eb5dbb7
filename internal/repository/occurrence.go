package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
)

const occurrenceColumns = `
	id,
	type,
	status,
	municipality,
	COALESCE(neighborhood, ''),
	address,
	latitude,
	longitude,
	occurrence_date,
	activation_date,
	COALESCE(victim_name, ''),
	COALESCE(victim_contact, ''),
	vehicle_id,
	description,
	created_by,
	created_at,
	updated_at`

type OccurrenceRepository struct {
	db *pgxpool.Pool
}

func NewOccurrenceRepository(db *pgxpool.Pool) service.OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

// Create inserts a new occurrence and fills in the generated fields.
func (r *OccurrenceRepository) Create(ctx context.Context, occ *models.Occurrence) error {
	query := `
		INSERT INTO occurrences (
			type, status, municipality, neighborhood, address,
			latitude, longitude, occurrence_date, activation_date,
			victim_name, victim_contact, vehicle_id, description, created_by
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		occ.Type,
		occ.Status,
		occ.Municipality,
		occ.Neighborhood,
		occ.Address,
		occ.Latitude,
		occ.Longitude,
		occ.OccurrenceDate,
		occ.ActivationDate,
		occ.VictimName,
		occ.VictimContact,
		occ.VehicleID,
		occ.Description,
		occ.CreatedBy,
	).Scan(&occ.ID, &occ.CreatedAt, &occ.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create occurrence: %v", service.ErrStorage, err)
	}
	return nil
}

// GetByID returns an occurrence by its UUID.
func (r *OccurrenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Occurrence, error) {
	query := fmt.Sprintf(`SELECT %s FROM occurrences WHERE id = $1;`, occurrenceColumns)

	occ, err := scanOccurrence(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: occurrence %s", service.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get occurrence by id: %v", service.ErrStorage, err)
	}
	return occ, nil
}

func (r *OccurrenceRepository) Update(ctx context.Context, occ *models.Occurrence) error {
	query := `
		UPDATE occurrences SET
			type = $1,
			status = $2,
			municipality = $3,
			neighborhood = NULLIF($4, ''),
			address = $5,
			latitude = $6,
			longitude = $7,
			occurrence_date = $8,
			activation_date = $9,
			victim_name = NULLIF($10, ''),
			victim_contact = NULLIF($11, ''),
			vehicle_id = $12,
			description = $13,
			updated_at = NOW()
		WHERE id = $14;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		occ.Type,
		occ.Status,
		occ.Municipality,
		occ.Neighborhood,
		occ.Address,
		occ.Latitude,
		occ.Longitude,
		occ.OccurrenceDate,
		occ.ActivationDate,
		occ.VictimName,
		occ.VictimContact,
		occ.VehicleID,
		occ.Description,
		occ.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update occurrence: %v", service.ErrStorage, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: occurrence %s", service.ErrNotFound, occ.ID)
	}
	return nil
}

func (r *OccurrenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM occurrences WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete occurrence: %v", service.ErrStorage, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: occurrence %s", service.ErrNotFound, id)
	}
	return nil
}

// List returns one page of occurrences matching the filter, newest
// occurrence_date first. A non-positive Limit disables pagination.
func (r *OccurrenceRepository) List(ctx context.Context, filter models.OccurrenceFilter) ([]*models.Occurrence, error) {
	where, args := buildOccurrenceWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM occurrences%s ORDER BY occurrence_date DESC`, occurrenceColumns, where)
	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		args = append(args, filter.Limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	query += ";"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list occurrences: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	occurrences := make([]*models.Occurrence, 0)
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan occurrence row: %v", service.ErrStorage, err)
		}
		occurrences = append(occurrences, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error in occurrence list iteration: %v", service.ErrStorage, err)
	}
	return occurrences, nil
}

// CountByStatus counts occurrences per stored status value using the same
// predicates as List, minus pagination. Counts reflect the filtered
// population, not the current page.
func (r *OccurrenceRepository) CountByStatus(ctx context.Context, filter models.OccurrenceFilter) (map[string]int, error) {
	where, args := buildOccurrenceWhere(filter)
	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM occurrences%s GROUP BY status;`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count occurrences by status: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: failed to scan status count row: %v", service.ErrStorage, err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error in status count iteration: %v", service.ErrStorage, err)
	}
	return counts, nil
}

// CountByType counts all occurrences per stored type value.
func (r *OccurrenceRepository) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT type, COUNT(*) FROM occurrences GROUP BY type;`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count occurrences by type: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("%w: failed to scan type count row: %v", service.ErrStorage, err)
		}
		counts[typ] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error in type count iteration: %v", service.ErrStorage, err)
	}
	return counts, nil
}

// TopMunicipalities returns the municipalities with the most occurrences.
func (r *OccurrenceRepository) TopMunicipalities(ctx context.Context, limit int) ([]models.MunicipalityCount, error) {
	query := `
		SELECT municipality, COUNT(*) AS total
		FROM occurrences
		GROUP BY municipality
		ORDER BY total DESC, municipality ASC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to rank municipalities: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	ranking := make([]models.MunicipalityCount, 0, limit)
	for rows.Next() {
		var mc models.MunicipalityCount
		if err := rows.Scan(&mc.Municipality, &mc.Count); err != nil {
			return nil, fmt.Errorf("%w: failed to scan municipality row: %v", service.ErrStorage, err)
		}
		ranking = append(ranking, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error in municipality ranking iteration: %v", service.ErrStorage, err)
	}
	return ranking, nil
}

// MonthlyCounts returns sparse per-month occurrence counts for a year.
func (r *OccurrenceRepository) MonthlyCounts(ctx context.Context, year int) ([]models.MonthlyCount, error) {
	query := `
		SELECT EXTRACT(MONTH FROM occurrence_date)::int AS month, COUNT(*)
		FROM occurrences
		WHERE EXTRACT(YEAR FROM occurrence_date)::int = $1
		GROUP BY month
		ORDER BY month;
	`
	rows, err := r.db.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get monthly counts: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	monthly := make([]models.MonthlyCount, 0, 12)
	for rows.Next() {
		var mc models.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("%w: failed to scan monthly count row: %v", service.ErrStorage, err)
		}
		monthly = append(monthly, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error in monthly count iteration: %v", service.ErrStorage, err)
	}
	return monthly, nil
}

// buildOccurrenceWhere translates the filter set into a WHERE clause.
// Municipality and neighborhood match as case-insensitive substrings; the
// free-text search spans address, description and victim name with OR
// semantics.
func buildOccurrenceWhere(filter models.OccurrenceFilter) (string, []any) {
	conds := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if filter.Type != nil {
		add("type = $%d", *filter.Type)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Municipality != "" {
		add("municipality ILIKE $%d", "%"+filter.Municipality+"%")
	}
	if filter.Neighborhood != "" {
		add("neighborhood ILIKE $%d", "%"+filter.Neighborhood+"%")
	}
	if filter.CreatedBy != nil {
		add("created_by = $%d", *filter.CreatedBy)
	}
	if filter.StartDate != nil {
		add("occurrence_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("occurrence_date <= $%d", *filter.EndDate)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(address ILIKE $%d OR description ILIKE $%d OR COALESCE(victim_name, '') ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// pgx.Row is satisfied by both QueryRow results and Rows.
func scanOccurrence(row pgx.Row) (*models.Occurrence, error) {
	occ := &models.Occurrence{}
	err := row.Scan(
		&occ.ID,
		&occ.Type,
		&occ.Status,
		&occ.Municipality,
		&occ.Neighborhood,
		&occ.Address,
		&occ.Latitude,
		&occ.Longitude,
		&occ.OccurrenceDate,
		&occ.ActivationDate,
		&occ.VictimName,
		&occ.VictimContact,
		&occ.VehicleID,
		&occ.Description,
		&occ.CreatedBy,
		&occ.CreatedAt,
		&occ.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return occ, nil
}
