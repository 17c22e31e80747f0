package invoice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

// uploads are documents, not media; 10 MiB is plenty
const maxUploadBytes = 10 << 20

type ServiceAPI interface {
	CreateInvoice(actor *auth.User, dto CreateInvoiceDTO, file io.Reader, originalName string) (*Invoice, error)
	UpdateInvoice(ctx context.Context, actor *auth.User, invoiceID int64, dto UpdateInvoiceDTO, file io.Reader, originalName string) (*Invoice, error)
	DeleteInvoice(actor *auth.User, invoiceID int64) error
	ListInvoices(actor *auth.User, userID *int64) ([]*Invoice, error)
	GetInvoiceFile(actor *auth.User, invoiceID int64) (io.ReadCloser, string, error)
	UploadPaymentEvidence(actor *auth.User, dto UploadEvidenceDTO, file io.Reader, originalName string) (*PaymentEvidence, error)
	ListPaymentEvidence(actor *auth.User, filter EvidenceFilter) ([]*PaymentEvidence, error)
	ListClosedWeeksWithApprovedHours(actor *auth.User, developerID int64) ([]*ClosedWeekHours, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	dto := CreateInvoiceDTO{}
	dto.UserID, _ = strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	dto.TotalHours, _ = strconv.ParseFloat(r.FormValue("total_hours"), 64)
	dto.Amount, _ = strconv.ParseFloat(r.FormValue("amount"), 64)
	if raw := r.FormValue("week_id"); raw != "" {
		weekID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid week_id")
			return
		}
		dto.WeekID = &weekID
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invoice file is required")
		return
	}
	defer file.Close()

	inv, err := h.Service.CreateInvoice(actor, dto, file, header.Filename)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, inv)
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	invoiceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid invoice ID")
		return
	}

	var dto UpdateInvoiceDTO
	var file io.Reader
	var originalName string

	// Accept either a JSON body or a multipart form with a replacement file.
	if err := r.ParseMultipartForm(maxUploadBytes); err == nil {
		if raw := r.FormValue("amount"); raw != "" {
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				h.WriteError(w, http.StatusBadRequest, "invalid amount")
				return
			}
			dto.Amount = &amount
		}
		if raw := r.FormValue("status"); raw != "" {
			status := raw
			dto.Status = &status
		}
		if f, header, err := r.FormFile("file"); err == nil {
			defer f.Close()
			file = f
			originalName = header.Filename
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	inv, err := h.Service.UpdateInvoice(r.Context(), actor, invoiceID, dto, file, originalName)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	invoiceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid invoice ID")
		return
	}

	if err := h.Service.DeleteInvoice(actor, invoiceID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "invoice deleted"})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var userID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = &id
	}

	invoices, err := h.Service.ListInvoices(actor, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices})
}

func (h *Handler) GetInvoiceFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	invoiceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid invoice ID")
		return
	}

	rc, fileName, err := h.Service.GetInvoiceFile(actor, invoiceID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Error("failed to stream invoice document", "error", err, "invoice_id", invoiceID)
	}
}

func (h *Handler) UploadPaymentEvidence(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	dto := UploadEvidenceDTO{}
	dto.UserID, _ = strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	dto.WeekID, _ = strconv.ParseInt(r.FormValue("week_id"), 10, 64)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "evidence file is required")
		return
	}
	defer file.Close()

	ev, err := h.Service.UploadPaymentEvidence(actor, dto, file, header.Filename)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ev)
}

func (h *Handler) ListPaymentEvidence(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var filter EvidenceFilter
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	if raw := r.URL.Query().Get("week_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid week_id")
			return
		}
		filter.WeekID = &id
	}

	evidence, err := h.Service.ListPaymentEvidence(actor, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"evidence": evidence})
}

func (h *Handler) ListClosedWeeksWithApprovedHours(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	developerID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	weeks, err := h.Service.ListClosedWeeksWithApprovedHours(actor, developerID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"weeks": weeks})
}
