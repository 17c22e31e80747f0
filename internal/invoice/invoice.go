package invoice

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusRejected = "rejected"
)

// Invoice bills a developer for hours in a billing period. The week link is
// optional so off-cycle invoices can still be issued.
type Invoice struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	UserID        int64     `json:"user_id" gorm:"column:user_id;not null"`
	WeekID        *int64    `json:"week_id,omitempty" gorm:"column:week_id"`
	InvoiceNumber string    `json:"invoice_number" gorm:"column:invoice_number;uniqueIndex;not null"`
	TotalHours    float64   `json:"total_hours" gorm:"column:total_hours;not null"`
	Amount        float64   `json:"amount" gorm:"not null"`
	Status        string    `json:"status" gorm:"default:pending"`
	FileName      string    `json:"file_name" gorm:"column:file_name"`
	CreatedBy     int64     `json:"created_by" gorm:"column:created_by"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusPaid, StatusRejected:
		return true
	}
	return false
}

// PaymentEvidence is an append-only proof-of-payment record. There is no
// status field; the row existing is the signal.
type PaymentEvidence struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     int64     `json:"user_id" gorm:"column:user_id;not null"`
	WeekID     int64     `json:"week_id" gorm:"column:week_id;not null"`
	FileName   string    `json:"file_name" gorm:"column:file_name;not null"`
	UploadedBy int64     `json:"uploaded_by" gorm:"column:uploaded_by"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (PaymentEvidence) TableName() string {
	return "payment_evidence"
}

// ClosedWeekHours aggregates a developer's approved hours in a closed week.
// It backs the invoice creation flow.
type ClosedWeekHours struct {
	WeekID        int64     `json:"week_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	ApprovedHours float64   `json:"approved_hours"`
}

// Domain errors
var (
	ErrInvoiceNotFound = internal.NewNotFoundError("invoice not found", internal.ErrCodeInvoiceNotFound)
	ErrDocumentMissing = internal.NewNotFoundError("document no longer available, contact support",
		internal.ErrCodeDocumentMissing)
	ErrDuplicateNumber = internal.NewConflictError("could not allocate a unique invoice number",
		internal.ErrCodeValidationFailed)
	ErrNotAllowed = internal.NewForbiddenError("operation not allowed for this role", internal.ErrCodeUnauthorizedAccess)
)
