package user

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// Repository defines the data access methods for users
type Repository interface {
	GetByID(id int64) (*User, error)
	List() ([]*User, error)
	Update(u *User) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetProfile(actor *auth.User) (*User, error) {
	u, err := s.repo.GetByID(actor.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile lets a user change their own presentation fields. Role and
// rate stay admin-only.
func (s *Service) UpdateProfile(actor *auth.User, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(actor.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", actor.ID)
		return nil, err
	}

	return u, nil
}

func (s *Service) ListUsers(actor *auth.User) ([]*User, error) {
	if !auth.Authorize(actor, auth.ActionViewUsers) {
		s.logger.Warn("user listing denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	users, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// UpdateUser applies the admin-managed fields: role, rate, tracker linkage
// and active state.
func (s *Service) UpdateUser(actor *auth.User, userID int64, dto UpdateUserDTO) (*User, error) {
	if !auth.Authorize(actor, auth.ActionManageUsers) {
		s.logger.Warn("user update denied", "user_id", actor.ID, "role", actor.Role, "target_id", userID)
		return nil, ErrNotAllowed
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.HourlyRate != nil {
		u.HourlyRate = *dto.HourlyRate
	}
	if dto.JiraLinked != nil {
		u.JiraLinked = *dto.JiraLinked
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "target_id", userID)
		return nil, err
	}

	s.logger.Info("user updated",
		"target_id", userID,
		"updated_by", actor.ID,
		"role", u.Role,
		"hourly_rate", u.HourlyRate)

	return u, nil
}

// HourlyRateFor satisfies the schedule rate lookup.
func (s *Service) HourlyRateFor(userID int64) (float64, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return 0, ErrUserNotFound
	}
	return u.HourlyRate, nil
}
