package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
)

const userColumns = `
	id,
	name,
	email,
	password_hash,
	role,
	COALESCE(registration, ''),
	COALESCE(unit, ''),
	created_at,
	updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) service.UserRepository {
	return &UserRepository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// failure, used to surface duplicate emails and plates as conflicts.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, registration, unit)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Registration,
		user.Unit,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %s already registered", service.ErrConflict, user.Email)
		}
		return fmt.Errorf("%w: failed to create user: %v", service.ErrStorage, err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1;`, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get user by id: %v", service.ErrStorage, err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1;`, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no user with email %s", service.ErrNotFound, email)
		}
		return nil, fmt.Errorf("%w: failed to get user by email: %v", service.ErrStorage, err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			registration = NULLIF($5, ''),
			unit = NULLIF($6, ''),
			updated_at = NOW()
		WHERE id = $7;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Registration,
		user.Unit,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %s already registered", service.ErrConflict, user.Email)
		}
		return fmt.Errorf("%w: failed to update user: %v", service.ErrStorage, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", service.ErrNotFound, user.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete user: %v", service.ErrStorage, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", service.ErrNotFound, id)
	}
	return nil
}

// List returns one page of users ordered by name, plus the total count.
func (r *UserRepository) List(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to count users: %v", service.ErrStorage, err)
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY name ASC LIMIT $1 OFFSET $2;`, userColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to list users: %v", service.ErrStorage, err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan user row: %v", service.ErrStorage, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: error in user list iteration: %v", service.ErrStorage, err)
	}
	return users, total, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1;`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count users by role: %v", service.ErrStorage, err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Registration,
		&user.Unit,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
