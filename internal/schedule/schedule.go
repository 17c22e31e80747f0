package schedule

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

// WorkSchedule is the agreed weekly working pattern of one developer. One
// row per user, maintained by admins via upsert.
type WorkSchedule struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	DaysPerWeek int       `json:"days_per_week" gorm:"column:days_per_week;not null"`
	HoursPerDay float64   `json:"hours_per_day" gorm:"column:hours_per_day;not null"`
	UpdatedBy   int64     `json:"updated_by" gorm:"column:updated_by"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (WorkSchedule) TableName() string {
	return "work_schedules"
}

// ExpectedWeeklyHours is the contracted hours per week.
func (s *WorkSchedule) ExpectedWeeklyHours() float64 {
	return float64(s.DaysPerWeek) * s.HoursPerDay
}

// ScheduleView decorates a schedule with derived progress figures.
type ScheduleView struct {
	WorkSchedule
	ExpectedWeeklyHours    float64 `json:"expected_weekly_hours"`
	ExpectedWeeklyEarnings float64 `json:"expected_weekly_earnings"`
}

type UpsertScheduleDTO struct {
	DaysPerWeek int     `json:"days_per_week"`
	HoursPerDay float64 `json:"hours_per_day"`
}

func (dto UpsertScheduleDTO) Validate() error {
	if dto.DaysPerWeek < 1 || dto.DaysPerWeek > 7 {
		return internal.NewValidationError("days_per_week must be between 1 and 7", internal.ErrCodeValidationFailed)
	}
	if dto.HoursPerDay <= 0 {
		return internal.NewValidationError("hours_per_day must be greater than 0", internal.ErrCodeInvalidHours)
	}
	if dto.HoursPerDay > 24 {
		return internal.NewValidationError("hours_per_day cannot exceed 24", internal.ErrCodeInvalidHours)
	}
	return nil
}

// Domain errors
var (
	ErrScheduleNotFound = internal.NewNotFoundError("schedule not found", internal.ErrCodeScheduleNotFound)
	ErrNotAllowed       = internal.NewForbiddenError("operation not allowed for this role", internal.ErrCodeUnauthorizedAccess)
)
