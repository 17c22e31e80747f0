package issuetracker

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Client ClientAPI
}

func NewHandler(client ClientAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Client:      client,
	}
}

// ListMyIssues returns the open tracker issues assigned to the session email.
func (h *Handler) ListMyIssues(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	page, err := h.Client.ListOpenIssues(r.Context(), actor.Email, offset, pageSize)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}
