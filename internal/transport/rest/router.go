package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/locpham246/task-manager/internal/audit"
	"github.com/locpham246/task-manager/internal/auth"
	"github.com/locpham246/task-manager/internal/document"
	"github.com/locpham246/task-manager/internal/task"
	"github.com/locpham246/task-manager/internal/transport/middleware"
	"github.com/locpham246/task-manager/internal/transport/swagger"
	"github.com/locpham246/task-manager/internal/user"
	"github.com/locpham246/task-manager/internal/whitelist"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	Guard     *auth.RoleGuard
	Task      *task.Handler
	Document  *document.Handler
	User      *user.Handler
	Whitelist *whitelist.Handler
	Audit     *audit.Handler
}

// RegisterAllRoutes wires the full HTTP surface under /api/v1. Role guards
// are coarse route-level checks; the services re-check ownership and
// field-level rules themselves.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		// Session endpoints; login is the only unauthenticated one.
		h.Auth.RegisterRoutes(r)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Middleware)

			h.Task.RegisterRoutes(pr)
			h.Document.RegisterRoutes(pr)

			pr.Route("/admin", func(ar chi.Router) {
				ar.Group(func(gr chi.Router) {
					gr.Use(h.Guard.RequireAdmin)
					gr.Get("/users", h.User.ListUsers)
					gr.Get("/activities", h.User.ListActivities)
					gr.Post("/invite-user", h.User.InviteUser)
				})

				ar.Group(func(gr chi.Router) {
					gr.Use(h.Guard.RequireSuperAdmin)
					gr.Get("/users/{id}", h.User.GetUser)
					gr.Put("/users/{id}", h.User.UpdateRole)
					gr.Get("/audit-logs", h.Audit.List)

					gr.Route("/whitelist", func(wr chi.Router) {
						wr.Get("/", h.Whitelist.List)
						wr.Post("/", h.Whitelist.Add)
						wr.Put("/{id}", h.Whitelist.Update)
						wr.Delete("/{id}", h.Whitelist.Remove)
					})
				})

				// Profile is self-or-super; the service decides.
				ar.Get("/users/{id}/profile", h.User.GetProfile)
			})
		})
	})
}
