package task

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Task is a unit of logged work submitted by a developer against the open
// week. Status moves pending → approved|rejected exactly once; rejected work
// is resubmitted as a new task.
type Task struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	UserID       int64      `json:"user_id" gorm:"column:user_id;not null"`
	WeekID       int64      `json:"week_id" gorm:"column:week_id;not null"`
	Description  string     `json:"description" gorm:"not null"`
	Hours        float64    `json:"hours" gorm:"not null"`
	Status       string     `json:"status" gorm:"default:pending"`
	IssueRef     *string    `json:"issue_ref,omitempty" gorm:"column:issue_ref"`
	AdminComment *string    `json:"admin_comment,omitempty" gorm:"column:admin_comment"`
	ReviewedBy   *int64     `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) IsPending() bool {
	return t.Status == StatusPending
}

func (t *Task) CanBeReviewed() bool {
	return t.Status == StatusPending
}

// WeekSummary aggregates the requesting developer's logged work in the open
// week. Payouts are hours times the developer's hourly rate.
type WeekSummary struct {
	WeekID         int64   `json:"week_id"`
	TaskCount      int     `json:"task_count"`
	TotalHours     float64 `json:"total_hours"`
	ApprovedHours  float64 `json:"approved_hours"`
	TotalPayout    float64 `json:"total_payout"`
	ApprovedPayout float64 `json:"approved_payout"`
}

// Domain errors
var (
	ErrTaskNotFound = internal.NewNotFoundError("task not found", internal.ErrCodeTaskNotFound)
	ErrTaskNotOwned = internal.NewForbiddenError("task belongs to another user", internal.ErrCodeUnauthorizedAccess)
	ErrTaskNotPending = internal.NewForbiddenError("task can no longer be modified in its current status",
		internal.ErrCodeTaskNotPending)
	ErrNotAllowed = internal.NewForbiddenError("operation not allowed for this role", internal.ErrCodeUnauthorizedAccess)
)
