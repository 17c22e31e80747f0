package schedule

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// Repository defines the data access methods for work schedules
type Repository interface {
	Upsert(s *WorkSchedule) error
	GetByUserID(userID int64) (*WorkSchedule, error)
}

// RateProvider resolves a developer's hourly rate for earnings projections.
type RateProvider interface {
	HourlyRateFor(userID int64) (float64, error)
}

type Service struct {
	repo   Repository
	rates  RateProvider
	logger *slog.Logger
}

func NewService(repo Repository, rates RateProvider, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		rates:  rates,
		logger: logger,
	}
}

// UpsertSchedule creates or replaces a developer's schedule in a single
// conflict-aware statement, so concurrent calls for the same user converge
// on one row.
func (s *Service) UpsertSchedule(actor *auth.User, userID int64, dto UpsertScheduleDTO) (*WorkSchedule, error) {
	if !auth.Authorize(actor, auth.ActionManageSchedule) {
		s.logger.Warn("schedule upsert denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.rates.HourlyRateFor(userID); err != nil {
		return nil, err
	}

	now := time.Now()
	sched := &WorkSchedule{
		UserID:      userID,
		DaysPerWeek: dto.DaysPerWeek,
		HoursPerDay: dto.HoursPerDay,
		UpdatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(sched); err != nil {
		s.logger.Error("failed to upsert schedule", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("schedule upserted",
		"user_id", userID,
		"days_per_week", dto.DaysPerWeek,
		"hours_per_day", dto.HoursPerDay,
		"updated_by", actor.ID)

	return sched, nil
}

// GetSchedule returns the schedule plus derived weekly hours and earnings.
// Developers may only read their own schedule.
func (s *Service) GetSchedule(actor *auth.User, userID int64) (*ScheduleView, error) {
	if actor.ID != userID && !actor.CanReview() {
		s.logger.Warn("schedule read denied", "user_id", actor.ID, "target_id", userID)
		return nil, ErrNotAllowed
	}

	sched, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.HourlyRateFor(userID)
	if err != nil {
		return nil, err
	}

	hours := sched.ExpectedWeeklyHours()
	return &ScheduleView{
		WorkSchedule:           *sched,
		ExpectedWeeklyHours:    hours,
		ExpectedWeeklyEarnings: hours * rate,
	}, nil
}
