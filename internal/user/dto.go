package user

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// UpdateProfileDTO covers the fields a user may change on their own record.
type UpdateProfileDTO struct {
	Name *string `json:"name,omitempty"`
}

func (dto UpdateProfileDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return internal.NewValidationError("name cannot be empty", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateUserDTO covers the admin-managed fields.
type UpdateUserDTO struct {
	Role       *string  `json:"role,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	JiraLinked *bool    `json:"jira_linked,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Role != nil {
		switch *dto.Role {
		case auth.RoleAdmin, auth.RoleHR, auth.RoleDeveloper:
		default:
			return internal.NewValidationError("role must be one of 'admin', 'hr' or 'developer'",
				internal.ErrCodeInvalidRole)
		}
	}
	if dto.HourlyRate != nil && *dto.HourlyRate < 0 {
		return internal.NewValidationError("hourly_rate cannot be negative", internal.ErrCodeInvalidRate)
	}
	return nil
}
