package week

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

// Week is a timesheet period developers log tasks against. Only one week may
// be open at a time; tasks always attach to the open week.
type Week struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	StartDate time.Time `json:"start_date" gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"column:end_date;type:date;not null"`
	IsOpen    bool      `json:"is_open" gorm:"column:is_open;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Week) TableName() string {
	return "weeks"
}

// WeekWithCounts augments a week with per-status task counts for the review
// listing.
type WeekWithCounts struct {
	Week
	TotalTasks    int64 `json:"total_tasks"`
	PendingTasks  int64 `json:"pending_tasks"`
	ApprovedTasks int64 `json:"approved_tasks"`
	RejectedTasks int64 `json:"rejected_tasks"`
}

const dateLayout = "2006-01-02"

type CreateWeekDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (dto CreateWeekDTO) Validate() error {
	if dto.StartDate == "" || dto.EndDate == "" {
		return internal.NewValidationError("start_date and end_date are required", internal.ErrCodeInvalidDates)
	}
	start, err := time.Parse(dateLayout, dto.StartDate)
	if err != nil {
		return internal.NewValidationError("start_date must be YYYY-MM-DD", internal.ErrCodeInvalidDates)
	}
	end, err := time.Parse(dateLayout, dto.EndDate)
	if err != nil {
		return internal.NewValidationError("end_date must be YYYY-MM-DD", internal.ErrCodeInvalidDates)
	}
	if end.Before(start) {
		return internal.NewValidationError("end_date must not be before start_date", internal.ErrCodeInvalidDates)
	}
	return nil
}

// Dates returns the parsed period; call Validate first.
func (dto CreateWeekDTO) Dates() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, dto.StartDate)
	end, _ := time.Parse(dateLayout, dto.EndDate)
	return start, end
}

type SetOpenDTO struct {
	IsOpen *bool `json:"is_open"`
}

func (dto SetOpenDTO) Validate() error {
	if dto.IsOpen == nil {
		return internal.NewValidationError("is_open is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Domain errors
var (
	ErrWeekNotFound    = internal.NewNotFoundError("week not found", internal.ErrCodeWeekNotFound)
	ErrNoOpenWeek      = internal.NewNotFoundError("no week is currently open", internal.ErrCodeNoOpenWeek)
	ErrAnotherWeekOpen = internal.NewConflictError("another week is already open", internal.ErrCodeWeekAlreadyOpen)
	ErrNotAllowed      = internal.NewForbiddenError("operation not allowed for this role", internal.ErrCodeUnauthorizedAccess)
)
