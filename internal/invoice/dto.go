package invoice

import (
	"github.com/frahmantamala/timesheet-management/internal"
)

type CreateInvoiceDTO struct {
	UserID     int64   `json:"user_id"`
	WeekID     *int64  `json:"week_id,omitempty"`
	TotalHours float64 `json:"total_hours"`
	Amount     float64 `json:"amount"`
}

func (dto CreateInvoiceDTO) Validate() error {
	if dto.UserID <= 0 {
		return internal.NewValidationError("user_id is required", internal.ErrCodeValidationFailed)
	}
	if dto.TotalHours <= 0 {
		return internal.NewValidationError("total_hours must be greater than 0", internal.ErrCodeInvalidHours)
	}
	if dto.Amount <= 0 {
		return internal.NewValidationError("amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	return nil
}

type UpdateInvoiceDTO struct {
	Amount *float64 `json:"amount,omitempty"`
	Status *string  `json:"status,omitempty"`
}

func (dto UpdateInvoiceDTO) Validate() error {
	if dto.Amount != nil && *dto.Amount <= 0 {
		return internal.NewValidationError("amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if dto.Status != nil && !ValidStatus(*dto.Status) {
		return internal.NewValidationError("status must be one of 'pending', 'paid' or 'rejected'",
			internal.ErrCodeValidationFailed)
	}
	return nil
}

type UploadEvidenceDTO struct {
	UserID int64 `json:"user_id"`
	WeekID int64 `json:"week_id"`
}

func (dto UploadEvidenceDTO) Validate() error {
	if dto.UserID <= 0 {
		return internal.NewValidationError("user_id is required", internal.ErrCodeValidationFailed)
	}
	if dto.WeekID <= 0 {
		return internal.NewValidationError("week_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// EvidenceFilter narrows the evidence listing. Nil fields match everything.
type EvidenceFilter struct {
	UserID *int64
	WeekID *int64
}
