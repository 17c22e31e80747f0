package user

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

// User is the directory record behind a session identity. Accounts are
// created on first successful sign-in and deactivated rather than deleted.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name"`
	PasswordHash *string   `json:"-" gorm:"column:password_hash"`
	Role         string    `json:"role" gorm:"default:developer"`
	HourlyRate   float64   `json:"hourly_rate" gorm:"column:hourly_rate;default:0"`
	JiraLinked   bool      `json:"jira_linked" gorm:"column:jira_linked;default:false"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

// Domain errors
var (
	ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrNotAllowed   = internal.NewForbiddenError("operation not allowed for this role", internal.ErrCodeUnauthorizedAccess)
)
