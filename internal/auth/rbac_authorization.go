package auth

import (
	"log/slog"
	"net/http"
)

// Action names a capability a request needs. Role checks live here instead
// of being scattered through handlers.
type Action string

const (
	ActionManageWeeks    Action = "weeks.manage"
	ActionViewWeeks      Action = "weeks.view"
	ActionReviewTasks    Action = "tasks.review"
	ActionManageInvoices Action = "invoices.manage"
	ActionManageEvidence Action = "evidence.manage"
	ActionManageUsers    Action = "users.manage"
	ActionViewUsers      Action = "users.view"
	ActionManageSchedule Action = "schedules.manage"
)

// Authorize is the single capability check: given a session and an action,
// may it proceed.
func Authorize(u *User, action Action) bool {
	if u == nil {
		return false
	}
	switch action {
	case ActionManageWeeks, ActionManageUsers, ActionManageSchedule:
		return u.IsAdmin()
	case ActionViewWeeks, ActionReviewTasks, ActionManageInvoices,
		ActionManageEvidence, ActionViewUsers:
		return u.CanReview()
	default:
		return false
	}
}

type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

// Require gates a route on a capability.
func (ra *RBACAuthorization) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context", "action", action)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !Authorize(user, action) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", user.ID,
					"role", user.Role,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Require(ActionManageWeeks)
}

// RequireReviewer admits admins and HR.
func (ra *RBACAuthorization) RequireReviewer() func(http.Handler) http.Handler {
	return ra.Require(ActionReviewTasks)
}
