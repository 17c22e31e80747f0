package invoice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/storage"
)

// Repository defines the data access methods for invoices and payment
// evidence
type Repository interface {
	Create(inv *Invoice) error
	GetByID(id int64) (*Invoice, error)
	Update(inv *Invoice) error
	Delete(id int64) error
	List(userID *int64) ([]*Invoice, error)
	CreateEvidence(ev *PaymentEvidence) error
	ListEvidence(filter EvidenceFilter) ([]*PaymentEvidence, error)
	ClosedWeeksWithApprovedHours(userID int64) ([]*ClosedWeekHours, error)
}

type Service struct {
	repo   Repository
	store  storage.DocumentStore
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, store storage.DocumentStore, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

func storedFileName(invoiceNumber, originalName string, at time.Time) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("invoice_%s_%d%s", invoiceNumber, at.Unix(), ext)
}

// CreateInvoice issues a new pending invoice with an attached document. The
// invoice number carries a random suffix, so the insert retries a bounded
// number of times on a unique-constraint conflict.
func (s *Service) CreateInvoice(actor *auth.User, dto CreateInvoiceDTO, file io.Reader, originalName string) (*Invoice, error) {
	if !auth.Authorize(actor, auth.ActionManageInvoices) {
		s.logger.Warn("invoice creation denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, internal.NewValidationError("invoice file is required", internal.ErrCodeValidationFailed)
	}

	var inv *Invoice
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		now := time.Now()
		number, err := GenerateInvoiceNumber(now)
		if err != nil {
			return nil, err
		}

		candidate := &Invoice{
			UserID:        dto.UserID,
			WeekID:        dto.WeekID,
			InvoiceNumber: number,
			TotalHours:    dto.TotalHours,
			Amount:        dto.Amount,
			Status:        StatusPending,
			FileName:      storedFileName(number, originalName, now),
			CreatedBy:     actor.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err = s.repo.Create(candidate)
		if err == nil {
			inv = candidate
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("invoice number collision, retrying", "number", number, "attempt", attempt+1)
			continue
		}
		s.logger.Error("failed to create invoice", "error", err, "user_id", dto.UserID)
		return nil, err
	}
	if inv == nil {
		return nil, ErrDuplicateNumber
	}

	// The upload reader can only be consumed once, so the row goes in first
	// and is rolled back if the document cannot be persisted.
	if err := s.store.Save(inv.FileName, file); err != nil {
		s.logger.Error("failed to store invoice document", "error", err, "invoice_id", inv.ID)
		if delErr := s.repo.Delete(inv.ID); delErr != nil {
			s.logger.Error("failed to roll back invoice after storage failure", "error", delErr, "invoice_id", inv.ID)
		}
		return nil, internal.NewInternalError("could not store invoice document", err)
	}

	s.logger.Info("invoice created",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"user_id", inv.UserID,
		"amount", inv.Amount)

	return inv, nil
}

// UpdateInvoice applies a partial update of amount, status and the attached
// document. Status changes are audited.
func (s *Service) UpdateInvoice(ctx context.Context, actor *auth.User, invoiceID int64, dto UpdateInvoiceDTO, file io.Reader, originalName string) (*Invoice, error) {
	if !auth.Authorize(actor, auth.ActionManageInvoices) {
		s.logger.Warn("invoice update denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.repo.GetByID(invoiceID)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}

	oldStatus := inv.Status
	if dto.Amount != nil {
		inv.Amount = *dto.Amount
	}
	if dto.Status != nil {
		inv.Status = *dto.Status
	}

	if file != nil {
		now := time.Now()
		newName := storedFileName(inv.InvoiceNumber, originalName, now)
		if err := s.store.Save(newName, file); err != nil {
			s.logger.Error("failed to store replacement document", "error", err, "invoice_id", invoiceID)
			return nil, internal.NewInternalError("could not store invoice document", err)
		}
		if inv.FileName != "" && inv.FileName != newName {
			if err := s.store.Remove(inv.FileName); err != nil && !errors.Is(err, storage.ErrDocumentMissing) {
				s.logger.Warn("failed to remove superseded document", "error", err, "file", inv.FileName)
			}
		}
		inv.FileName = newName
	}

	inv.UpdatedAt = time.Now()
	if err := s.repo.Update(inv); err != nil {
		s.logger.Error("failed to update invoice", "error", err, "invoice_id", invoiceID)
		return nil, err
	}

	if dto.Status != nil && *dto.Status != oldStatus {
		if err := s.bus.PublishSync(ctx, events.NewInvoiceStatusChangedEvent(inv.ID, actor.ID, oldStatus, inv.Status)); err != nil {
			s.logger.Error("failed to publish invoice status event", "error", err, "invoice_id", inv.ID)
		}
	}

	return inv, nil
}

func (s *Service) DeleteInvoice(actor *auth.User, invoiceID int64) error {
	if !auth.Authorize(actor, auth.ActionManageInvoices) {
		s.logger.Warn("invoice deletion denied", "user_id", actor.ID, "role", actor.Role)
		return ErrNotAllowed
	}

	inv, err := s.repo.GetByID(invoiceID)
	if err != nil {
		return ErrInvoiceNotFound
	}

	if err := s.repo.Delete(invoiceID); err != nil {
		s.logger.Error("failed to delete invoice", "error", err, "invoice_id", invoiceID)
		return err
	}

	if inv.FileName != "" {
		if err := s.store.Remove(inv.FileName); err != nil && !errors.Is(err, storage.ErrDocumentMissing) {
			s.logger.Warn("failed to remove document of deleted invoice", "error", err, "file", inv.FileName)
		}
	}

	s.logger.Info("invoice deleted", "invoice_id", invoiceID, "user_id", actor.ID)
	return nil
}

// ListInvoices returns invoices visible to the caller. Developers always get
// their own regardless of the filter; reviewers may filter by user.
func (s *Service) ListInvoices(actor *auth.User, userID *int64) ([]*Invoice, error) {
	if !actor.CanReview() {
		userID = &actor.ID
	}

	invoices, err := s.repo.List(userID)
	if err != nil {
		s.logger.Error("failed to list invoices", "error", err, "user_id", actor.ID)
		return nil, err
	}
	return invoices, nil
}

// GetInvoiceFile opens the stored document of an invoice. Access is limited
// to the owning developer and reviewers. The store is ephemeral, so a missing
// document is an expected condition with its own message.
func (s *Service) GetInvoiceFile(actor *auth.User, invoiceID int64) (io.ReadCloser, string, error) {
	inv, err := s.repo.GetByID(invoiceID)
	if err != nil {
		return nil, "", ErrInvoiceNotFound
	}

	if inv.UserID != actor.ID && !actor.CanReview() {
		s.logger.Warn("invoice file access denied", "invoice_id", invoiceID, "user_id", actor.ID)
		return nil, "", ErrNotAllowed
	}

	rc, err := s.store.Open(inv.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentMissing) {
			s.logger.Warn("invoice document missing from store", "invoice_id", invoiceID, "file", inv.FileName)
			return nil, "", ErrDocumentMissing
		}
		s.logger.Error("failed to open invoice document", "error", err, "invoice_id", invoiceID)
		return nil, "", err
	}

	return rc, inv.FileName, nil
}

// UploadPaymentEvidence appends a proof-of-payment record. There is no update
// or delete path.
func (s *Service) UploadPaymentEvidence(actor *auth.User, dto UploadEvidenceDTO, file io.Reader, originalName string) (*PaymentEvidence, error) {
	if !auth.Authorize(actor, auth.ActionManageEvidence) {
		s.logger.Warn("evidence upload denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, internal.NewValidationError("evidence file is required", internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	name := fmt.Sprintf("evidence_%d_%d_%d%s", dto.UserID, dto.WeekID, now.Unix(), filepath.Ext(originalName))
	if err := s.store.Save(name, file); err != nil {
		s.logger.Error("failed to store evidence document", "error", err, "user_id", dto.UserID)
		return nil, internal.NewInternalError("could not store evidence document", err)
	}

	ev := &PaymentEvidence{
		UserID:     dto.UserID,
		WeekID:     dto.WeekID,
		FileName:   name,
		UploadedBy: actor.ID,
		CreatedAt:  now,
	}
	if err := s.repo.CreateEvidence(ev); err != nil {
		s.logger.Error("failed to record payment evidence", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("payment evidence uploaded",
		"evidence_id", ev.ID,
		"user_id", dto.UserID,
		"week_id", dto.WeekID,
		"uploaded_by", actor.ID)

	return ev, nil
}

func (s *Service) ListPaymentEvidence(actor *auth.User, filter EvidenceFilter) ([]*PaymentEvidence, error) {
	if !auth.Authorize(actor, auth.ActionManageEvidence) {
		s.logger.Warn("evidence listing denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	evidence, err := s.repo.ListEvidence(filter)
	if err != nil {
		s.logger.Error("failed to list payment evidence", "error", err)
		return nil, err
	}
	return evidence, nil
}

// ListClosedWeeksWithApprovedHours aggregates a developer's approved hours
// per closed week, feeding invoice creation.
func (s *Service) ListClosedWeeksWithApprovedHours(actor *auth.User, developerID int64) ([]*ClosedWeekHours, error) {
	if !auth.Authorize(actor, auth.ActionManageInvoices) {
		s.logger.Warn("closed week listing denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	weeks, err := s.repo.ClosedWeeksWithApprovedHours(developerID)
	if err != nil {
		s.logger.Error("failed to aggregate closed weeks", "error", err, "developer_id", developerID)
		return nil, err
	}
	return weeks, nil
}
