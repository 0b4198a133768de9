package user

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/serfi-platform/user-management/internal"
	userDatamodel "github.com/serfi-platform/user-management/internal/core/datamodel/user"
	"github.com/serfi-platform/user-management/internal/core/events"
)

// Repository defines the data access methods for the user directory.
type Repository interface {
	ProjectorRepository
	GetAll() ([]*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	Create(record *userDatamodel.User) error
	UpdateFields(id int64, fields map[string]interface{}) (int64, error)
	Delete(id int64) error
}

// PasswordHasher hashes plaintext credentials before they are stored. The
// auth module provides the bcrypt implementation.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo      Repository
	projector *Projector
	hasher    PasswordHasher
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, projector *Projector, hasher PasswordHasher, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		projector: projector,
		hasher:    hasher,
		bus:       bus,
		logger:    logger,
	}
}

// GetAll returns every user projected through the authorization projector so
// callers get role and permission context in one round trip.
func (s *Service) GetAll() ([]AuthorizationView, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, errors.NewInternalError("failed to list users", err)
	}

	views := make([]AuthorizationView, 0, len(records))
	for _, record := range records {
		view, err := s.projector.project(record)
		if err != nil {
			s.logger.Error("failed to project user", "error", err, "user_id", record.ID)
			return nil, errors.NewInternalError("failed to project user", err)
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, errors.NewInternalError("failed to get user", err)
	}
	if record == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(record), nil
}

// GetByEmail looks a user up by exact, case-sensitive email match.
func (s *Service) GetByEmail(email string) (*User, error) {
	record, err := s.repo.GetByEmail(email)
	if err != nil {
		s.logger.Error("failed to get user by email", "error", err)
		return nil, errors.NewInternalError("failed to get user", err)
	}
	if record == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(record), nil
}

func (s *Service) Create(dto CreateUserDTO) (*AuthorizationView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Error("failed to check email uniqueness", "error", err)
		return nil, errors.NewInternalError("failed to create user", err)
	}
	if existing != nil {
		return nil, errors.ErrEmailTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, errors.NewInternalError("failed to create user", err)
	}

	record := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Country:      dto.Country,
		RoleID:       dto.RoleID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, errors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", record.ID, "role_id", record.RoleID)
	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewUserCreatedEvent(record.ID, record.Email, record.RoleID))
	}

	view, err := s.projector.project(record)
	if err != nil {
		s.logger.Error("failed to project created user", "error", err, "user_id", record.ID)
		return nil, errors.NewInternalError("failed to project created user", err)
	}
	return view, nil
}

// Update applies a partial update. Nil fields are left untouched; a supplied
// password is hashed before it overwrites the stored hash.
func (s *Service) Update(id int64, dto UpdateUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load user for update", "error", err, "user_id", id)
		return errors.NewInternalError("failed to update user", err)
	}
	if existing == nil {
		return errors.ErrUserNotFound
	}

	fields := map[string]interface{}{}
	if dto.Name != nil {
		fields["name"] = *dto.Name
	}
	if dto.Email != nil && *dto.Email != existing.Email {
		other, err := s.repo.GetByEmail(*dto.Email)
		if err != nil {
			return errors.NewInternalError("failed to update user", err)
		}
		if other != nil {
			return errors.ErrEmailTaken
		}
		fields["email"] = *dto.Email
	}
	if dto.Country != nil {
		fields["country"] = *dto.Country
	}
	if dto.RoleID != nil {
		fields["role_id"] = *dto.RoleID
	}
	if dto.Password != nil && *dto.Password != "" {
		hash, err := s.hasher.HashPassword(*dto.Password)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err, "user_id", id)
			return errors.NewInternalError("failed to update user", err)
		}
		fields["password_hash"] = hash
	}

	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()

	rows, err := s.repo.UpdateFields(id, fields)
	if err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return errors.NewInternalError("failed to update user", err)
	}
	if rows == 0 {
		// The row vanished between the existence check and the write.
		return errors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user permanently. Deleting an absent id reports not found.
// Roles and permissions are independent of user lifecycle and stay in place.
func (s *Service) Delete(id int64) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load user for delete", "error", err, "user_id", id)
		return errors.NewInternalError("failed to delete user", err)
	}
	if existing == nil {
		return errors.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return errors.NewInternalError("failed to delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id)
	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewUserDeletedEvent(id))
	}
	return nil
}

func (s *Service) GetAuthorizationView(id int64) (*AuthorizationView, error) {
	view, err := s.projector.View(id)
	if err != nil {
		s.logger.Error("failed to build authorization view", "error", err, "user_id", id)
		return nil, errors.NewInternalError("failed to build authorization view", err)
	}
	if view == nil {
		return nil, errors.ErrUserNotFound
	}
	return view, nil
}

// UpdateLastLogin stamps the last-login timestamp. Used by the login flow.
func (s *Service) UpdateLastLogin(id int64, at time.Time) error {
	rows, err := s.repo.UpdateFields(id, map[string]interface{}{
		"last_login_at": at,
		"updated_at":    time.Now(),
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

// SetPasswordHash overwrites the stored credential hash. A zero-row update
// means the user was deleted underneath the caller.
func (s *Service) SetPasswordHash(id int64, hash string) error {
	rows, err := s.repo.UpdateFields(id, map[string]interface{}{
		"password_hash": hash,
		"updated_at":    time.Now(),
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}
