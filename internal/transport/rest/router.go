package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/invoice"
	"github.com/frahmantamala/timesheet-management/internal/issuetracker"
	"github.com/frahmantamala/timesheet-management/internal/schedule"
	"github.com/frahmantamala/timesheet-management/internal/task"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/frahmantamala/timesheet-management/internal/user"
	"github.com/frahmantamala/timesheet-management/internal/week"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	rbac *auth.RBACAuthorization,
	userHandler *user.Handler,
	weekHandler *week.Handler,
	taskHandler *task.Handler,
	invoiceHandler *invoice.Handler,
	scheduleHandler *schedule.Handler,
	issueHandler *issuetracker.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/oauth/callback", authHandler.OAuthCallback)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Everything below needs a session.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", userHandler.GetProfile)
			pr.Patch("/users/me", userHandler.UpdateProfile)

			pr.Group(func(ar chi.Router) {
				ar.Use(rbac.Require(auth.ActionViewUsers))
				ar.Get("/users", userHandler.ListUsers)
			})
			pr.Group(func(ar chi.Router) {
				ar.Use(rbac.Require(auth.ActionManageUsers))
				ar.Patch("/users/{id}", userHandler.UpdateUser)
			})

			pr.Route("/weeks", func(wr chi.Router) {
				wr.Get("/open", weekHandler.GetOpenWeek)

				wr.Group(func(vr chi.Router) {
					vr.Use(rbac.RequireReviewer())
					vr.Get("/", weekHandler.ListWeeks)
					vr.Get("/closed-approved", invoiceHandler.ListClosedWeeksWithApprovedHours)
				})

				wr.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(auth.ActionManageWeeks))
					mr.Post("/", weekHandler.CreateWeek)
					mr.Patch("/{id}/open", weekHandler.SetWeekOpen)
				})
			})

			pr.Route("/tasks", func(tr chi.Router) {
				tr.Post("/", taskHandler.CreateTask)
				tr.Get("/mine", taskHandler.ListMyTasks)
				tr.Get("/summary", taskHandler.GetWeekSummary)
				tr.Patch("/{id}", taskHandler.UpdateTask)
				tr.Delete("/{id}", taskHandler.DeleteTask)

				tr.Group(func(rr chi.Router) {
					rr.Use(rbac.RequireReviewer())
					rr.Get("/review", taskHandler.ListTasksForReview)
					rr.Patch("/{id}/review", taskHandler.ReviewTask)
				})
			})

			pr.Route("/invoices", func(ir chi.Router) {
				ir.Get("/", invoiceHandler.ListInvoices)
				ir.Get("/{id}/file", invoiceHandler.GetInvoiceFile)

				ir.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(auth.ActionManageInvoices))
					mr.Post("/", invoiceHandler.CreateInvoice)
					mr.Patch("/{id}", invoiceHandler.UpdateInvoice)
					mr.Delete("/{id}", invoiceHandler.DeleteInvoice)
				})
			})

			pr.Route("/payment-evidence", func(er chi.Router) {
				er.Use(rbac.Require(auth.ActionManageEvidence))
				er.Post("/", invoiceHandler.UploadPaymentEvidence)
				er.Get("/", invoiceHandler.ListPaymentEvidence)
			})

			pr.Route("/schedules", func(sr chi.Router) {
				sr.Get("/{userID}", scheduleHandler.GetSchedule)

				sr.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(auth.ActionManageSchedule))
					mr.Put("/{userID}", scheduleHandler.UpsertSchedule)
				})
			})

			pr.Get("/issues", issueHandler.ListMyIssues)
		})
	})
}
