package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/shenikar/occurrence_reporting_system/internal/diff"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines the storage contract for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int) ([]*models.User, int, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// UserService covers account management and the login/logout path.
type UserService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, p auth.Principal)
	Create(ctx context.Context, p auth.Principal, user *models.User, password string) (*models.User, error)
	GetByID(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, p auth.Principal, page, limit int) ([]*models.User, int, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, update models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
}

type userService struct {
	repo       UserRepository
	recorder   AuditRecorder
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *logrus.Logger
}

func NewUserService(repo UserRepository, recorder AuditRecorder, tokens *auth.TokenManager, bcryptCost int, logger *logrus.Logger) UserService {
	return &userService{
		repo:       repo,
		recorder:   recorder,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// userAuditFields flattens a user into the field map the diff engine
// compares. Keys must match the user allow-list; the password hash rides
// along only so the diff engine can detect (and redact) a change.
func userAuditFields(u *models.User) map[string]any {
	return map[string]any{
		"name":         u.Name,
		"email":        u.Email,
		"role":         string(u.Role),
		"unit":         u.Unit,
		"registration": u.Registration,
		"password":     u.PasswordHash,
	}
}

// Login verifies credentials and issues a bearer token. A successful login
// is recorded in the audit trail.
func (s *userService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "Login",
	})

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		log.Warn("Login attempt for unknown email")
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrPermissionDenied)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.WithField("user_id", user.ID).Warn("Login attempt with wrong password")
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrPermissionDenied)
	}

	token, err := s.tokens.Issue(auth.Principal{ID: user.ID, Role: user.Role})
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		return "", nil, fmt.Errorf("service: could not issue token: %w", err)
	}

	actor := user.ID
	s.recorder.Record(ctx, &actor, models.ActionLogin, models.EntityUser, &user.ID, nil, nil)

	log.WithField("user_id", user.ID).Info("User logged in")
	return token, user, nil
}

// Logout records the logout in the audit trail. Tokens are stateless, so
// there is nothing to revoke server-side.
func (s *userService) Logout(ctx context.Context, p auth.Principal) {
	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionLogout, models.EntityUser, &p.ID, nil, nil)
}

// Create registers a new account. Admin only.
func (s *userService) Create(ctx context.Context, p auth.Principal, user *models.User, password string) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "Create",
		"email":   user.Email,
	})

	if !auth.CanManageUsers(p) {
		return nil, fmt.Errorf("%w: role %q may not manage users", ErrPermissionDenied, p.Role)
	}
	if !models.ValidRole(user.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, user.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		return nil, fmt.Errorf("service: could not hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		log.WithError(err).Error("Failed to create user in repository")
		return nil, fmt.Errorf("service: could not create user: %w", err)
	}

	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionCreate, models.EntityUser, &user.ID, nil, map[string]any{
		"role": string(user.Role),
	})

	log.WithField("user_id", user.ID).Info("User created")
	return user, nil
}

// GetByID returns a single account. Callers may always read themselves.
func (s *userService) GetByID(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.User, error) {
	if id != p.ID && !auth.CanManageUsers(p) {
		return nil, fmt.Errorf("%w: cannot view another user's account", ErrPermissionDenied)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get user: %w", err)
	}
	return user, nil
}

// List returns one page of accounts. Admin only.
func (s *userService) List(ctx context.Context, p auth.Principal, page, limit int) ([]*models.User, int, error) {
	if !auth.CanManageUsers(p) {
		return nil, 0, fmt.Errorf("%w: role %q may not list users", ErrPermissionDenied, p.Role)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list users")
		return nil, 0, fmt.Errorf("service: could not list users: %w", err)
	}
	return users, total, nil
}

// Update applies a partial update. Users may edit their own profile; role
// changes and edits to other accounts require user management rights.
func (s *userService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, update models.UserUpdate) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "Update",
		"user_id": id,
	})

	if id != p.ID && !auth.CanManageUsers(p) {
		return nil, fmt.Errorf("%w: cannot update another user's account", ErrPermissionDenied)
	}
	if update.Role != nil && !auth.CanManageUsers(p) {
		return nil, fmt.Errorf("%w: role changes require user management rights", ErrPermissionDenied)
	}
	if update.Role != nil && !models.ValidRole(*update.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *update.Role)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent user")
		return nil, fmt.Errorf("service: user not found for update: %w", err)
	}

	before := userAuditFields(user)
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.Registration != nil {
		user.Registration = *update.Registration
	}
	if update.Unit != nil {
		user.Unit = *update.Unit
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), s.bcryptCost)
		if err != nil {
			log.WithError(err).Error("Failed to hash password")
			return nil, fmt.Errorf("service: could not hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		log.WithError(err).Error("Failed to update user in repository")
		return nil, fmt.Errorf("service: could not update user: %w", err)
	}

	changes := diff.Compute(models.EntityUser, before, userAuditFields(user))
	if len(changes) > 0 {
		actor := p.ID
		s.recorder.Record(ctx, &actor, models.ActionUpdate, models.EntityUser, &user.ID, changes, nil)
	}

	log.WithField("changed_fields", len(changes)).Info("User updated")
	return user, nil
}

// Delete removes an account. Admin only. Self-deletion and deletion of the
// last remaining admin are forbidden.
func (s *userService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "Delete",
		"user_id": id,
	})

	if !auth.CanDelete(p, models.EntityUser) {
		return fmt.Errorf("%w: role %q may not delete users", ErrPermissionDenied, p.Role)
	}
	if id == p.ID {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvariantViolation)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to delete a non-existent user")
		return fmt.Errorf("service: user not found for delete: %w", err)
	}

	if user.Role == models.RoleAdmin {
		admins, err := s.repo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			log.WithError(err).Error("Failed to count admin accounts")
			return fmt.Errorf("service: could not check admin count: %w", err)
		}
		if admins <= 1 {
			return fmt.Errorf("%w: cannot delete the last admin account", ErrInvariantViolation)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete user in repository")
		return fmt.Errorf("service: could not delete user: %w", err)
	}

	actor := p.ID
	s.recorder.Record(ctx, &actor, models.ActionDelete, models.EntityUser, &id, nil, map[string]any{
		"email": user.Email,
	})

	log.Info("User deleted")
	return nil
}
