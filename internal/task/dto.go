package task

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
)

// hard cap: a week has 168 hours
const maxHoursPerTask = 168

type CreateTaskDTO struct {
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	IssueRef    *string `json:"issue_ref,omitempty"`
}

func (dto CreateTaskDTO) Validate() error {
	if strings.TrimSpace(dto.Description) == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Description) > 500 {
		return internal.NewValidationError("description must be less than 500 characters", internal.ErrCodeValidationFailed)
	}
	if dto.Hours <= 0 {
		return internal.NewValidationError("hours must be greater than 0", internal.ErrCodeInvalidHours)
	}
	if dto.Hours > maxHoursPerTask {
		return internal.NewValidationError("hours exceed a single week", internal.ErrCodeInvalidHours)
	}
	return nil
}

type UpdateTaskDTO struct {
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
}

func (dto UpdateTaskDTO) Validate() error {
	return CreateTaskDTO{Description: dto.Description, Hours: dto.Hours}.Validate()
}

type ReviewTaskDTO struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

func (dto ReviewTaskDTO) Validate() error {
	if dto.Status != StatusApproved && dto.Status != StatusRejected {
		return internal.NewValidationError("status must be either 'approved' or 'rejected'", internal.ErrCodeValidationFailed)
	}
	if dto.Status == StatusRejected && strings.TrimSpace(dto.Comment) == "" {
		return internal.NewValidationError("comment is required when rejecting a task", internal.ErrCodeCommentRequired)
	}
	return nil
}

// Status filters accepted by the review listing.
const (
	FilterAll      = "all"
	FilterPending  = StatusPending
	FilterApproved = StatusApproved
	FilterRejected = StatusRejected
)

func ValidStatusFilter(filter string) bool {
	switch filter {
	case FilterAll, FilterPending, FilterApproved, FilterRejected:
		return true
	}
	return false
}
