package week

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
)

// Repository defines the data access methods for weeks
type Repository interface {
	Create(week *Week) error
	GetByID(id int64) (*Week, error)
	OpenWeek() (*Week, error)
	SetOpen(id int64, isOpen bool) error
	ListWithTaskCounts() ([]*WeekWithCounts, error)
}

type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// CreateWeek opens a new period. The week always starts open, so creation is
// refused while any other week is open.
func (s *Service) CreateWeek(actor *auth.User, dto CreateWeekDTO) (*Week, error) {
	if !auth.Authorize(actor, auth.ActionManageWeeks) {
		s.logger.Warn("create week denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if open, err := s.repo.OpenWeek(); err == nil && open != nil {
		s.logger.Warn("create week refused: a week is already open",
			"open_week_id", open.ID)
		return nil, ErrAnotherWeekOpen
	}

	start, end := dto.Dates()
	week := &Week{
		StartDate: start,
		EndDate:   end,
		IsOpen:    true,
	}

	if err := s.repo.Create(week); err != nil {
		s.logger.Error("failed to create week", "error", err)
		return nil, err
	}

	s.logger.Info("week created",
		"week_id", week.ID,
		"start_date", dto.StartDate,
		"end_date", dto.EndDate)

	return week, nil
}

// SetWeekOpen toggles a week. Reopening while a different week is open is
// refused; closing is unconditional.
func (s *Service) SetWeekOpen(ctx context.Context, actor *auth.User, weekID int64, dto SetOpenDTO) (*Week, error) {
	if !auth.Authorize(actor, auth.ActionManageWeeks) {
		s.logger.Warn("set week open denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	week, err := s.repo.GetByID(weekID)
	if err != nil {
		return nil, ErrWeekNotFound
	}

	isOpen := *dto.IsOpen
	if isOpen {
		if open, err := s.repo.OpenWeek(); err == nil && open != nil && open.ID != weekID {
			s.logger.Warn("reopen refused: a different week is open",
				"week_id", weekID,
				"open_week_id", open.ID)
			return nil, ErrAnotherWeekOpen
		}
	}

	if err := s.repo.SetOpen(weekID, isOpen); err != nil {
		s.logger.Error("failed to toggle week", "error", err, "week_id", weekID)
		return nil, err
	}
	week.IsOpen = isOpen

	if err := s.bus.PublishSync(ctx, events.NewWeekStateChangedEvent(weekID, actor.ID, isOpen)); err != nil {
		s.logger.Error("failed to publish week state event", "error", err, "week_id", weekID)
	}

	s.logger.Info("week state changed",
		"week_id", weekID,
		"is_open", isOpen,
		"actor_id", actor.ID)

	return week, nil
}

// ListWeeks returns all weeks, newest first, with task counts.
func (s *Service) ListWeeks(actor *auth.User) ([]*WeekWithCounts, error) {
	if !auth.Authorize(actor, auth.ActionViewWeeks) {
		s.logger.Warn("list weeks denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	weeks, err := s.repo.ListWithTaskCounts()
	if err != nil {
		s.logger.Error("failed to list weeks", "error", err)
		return nil, err
	}

	return weeks, nil
}

// GetOpenWeek returns the currently open week; developers need it to submit.
func (s *Service) GetOpenWeek() (*Week, error) {
	open, err := s.repo.OpenWeek()
	if err != nil || open == nil {
		return nil, ErrNoOpenWeek
	}
	return open, nil
}
