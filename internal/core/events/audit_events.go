package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTaskReviewed         = "task.reviewed"
	EventInvoiceStatusChanged = "invoice.status_changed"
	EventWeekStateChanged     = "week.state_changed"
)

func NewTaskReviewedEvent(taskID, reviewerID int64, status, comment string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTaskReviewed,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"task_id":     taskID,
			"reviewer_id": reviewerID,
			"status":      status,
			"comment":     comment,
		},
	}
}

func NewInvoiceStatusChangedEvent(invoiceID, actorID int64, oldStatus, newStatus string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventInvoiceStatusChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"invoice_id": invoiceID,
			"actor_id":   actorID,
			"old_status": oldStatus,
			"new_status": newStatus,
		},
	}
}

func NewWeekStateChangedEvent(weekID, actorID int64, isOpen bool) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventWeekStateChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"week_id":  weekID,
			"actor_id": actorID,
			"is_open":  isOpen,
		},
	}
}
