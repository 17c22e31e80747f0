package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal/invoice"
)

// InvoiceRepository implements the invoice.Repository interface using GORM
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) invoice.Repository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(inv *invoice.Invoice) error {
	return r.db.Create(inv).Error
}

func (r *InvoiceRepository) GetByID(id int64) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.db.Where("id = ?", id).First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) Update(inv *invoice.Invoice) error {
	return r.db.Model(&invoice.Invoice{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"amount":     inv.Amount,
			"status":     inv.Status,
			"file_name":  inv.FileName,
			"updated_at": time.Now(),
		}).Error
}

func (r *InvoiceRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&invoice.Invoice{}).Error
}

func (r *InvoiceRepository) List(userID *int64) ([]*invoice.Invoice, error) {
	var invoices []*invoice.Invoice
	q := r.db.Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	err := q.Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) CreateEvidence(ev *invoice.PaymentEvidence) error {
	return r.db.Create(ev).Error
}

func (r *InvoiceRepository) ListEvidence(filter invoice.EvidenceFilter) ([]*invoice.PaymentEvidence, error) {
	var evidence []*invoice.PaymentEvidence
	q := r.db.Order("created_at DESC")
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.WeekID != nil {
		q = q.Where("week_id = ?", *filter.WeekID)
	}
	err := q.Find(&evidence).Error
	return evidence, err
}

func (r *InvoiceRepository) ClosedWeeksWithApprovedHours(userID int64) ([]*invoice.ClosedWeekHours, error) {
	var rows []*invoice.ClosedWeekHours
	err := r.db.Raw(`
		SELECT w.id AS week_id, w.start_date, w.end_date,
		       COALESCE(SUM(t.hours), 0) AS approved_hours
		FROM weeks w
		JOIN tasks t ON t.week_id = w.id
		WHERE w.is_open = ? AND t.user_id = ? AND t.status = ?
		GROUP BY w.id, w.start_date, w.end_date
		ORDER BY w.start_date DESC`,
		false, userID, "approved").
		Scan(&rows).Error
	return rows, err
}
