package taskboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/teamtask/taskboard/internal/http/handlers/auth/login"
	"github.com/teamtask/taskboard/internal/http/handlers/task/addfile"
	"github.com/teamtask/taskboard/internal/http/handlers/task/assign"
	"github.com/teamtask/taskboard/internal/http/handlers/task/create"
	"github.com/teamtask/taskboard/internal/http/handlers/task/dashboard"
	"github.com/teamtask/taskboard/internal/http/handlers/task/list"
	"github.com/teamtask/taskboard/internal/http/handlers/task/listbystatus"
	"github.com/teamtask/taskboard/internal/http/handlers/task/read"
	"github.com/teamtask/taskboard/internal/http/handlers/task/remove"
	"github.com/teamtask/taskboard/internal/http/handlers/task/tickpoint"
	"github.com/teamtask/taskboard/internal/http/handlers/task/untickpoint"
	"github.com/teamtask/taskboard/internal/http/handlers/task/update"
	"github.com/teamtask/taskboard/internal/http/handlers/task/updatestatus"
	usercreate "github.com/teamtask/taskboard/internal/http/handlers/user/create"
	userlist "github.com/teamtask/taskboard/internal/http/handlers/user/list"
	"github.com/teamtask/taskboard/internal/http/handlers/user/profileread"
	"github.com/teamtask/taskboard/internal/http/handlers/user/profileupdate"
	userremove "github.com/teamtask/taskboard/internal/http/handlers/user/remove"
	"github.com/teamtask/taskboard/internal/http/middlewarectx"
	"github.com/teamtask/taskboard/internal/lib/jwt"
	authservice "github.com/teamtask/taskboard/internal/services/auth"
	taskservice "github.com/teamtask/taskboard/internal/services/task"
)

// RegisterRoutes registers all application routes.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, authService *authservice.Service, taskService *taskservice.Service) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)

		// Group behind JWT authentication
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/profile", profileread.New(logger, authService).ServeHTTP)
			r.Put("/auth/profile", profileupdate.New(logger, authService).ServeHTTP)

			r.Post("/tasks", create.New(logger, taskService).ServeHTTP)
			r.Get("/tasks", list.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/{taskID}", read.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/status/{status}", listbystatus.New(logger, taskService).ServeHTTP)
			r.Put("/tasks/{taskID}", update.New(logger, taskService).ServeHTTP)
			r.Put("/tasks/{taskID}/status", updatestatus.New(logger, taskService).ServeHTTP)
			r.Put("/tasks/{taskID}/points/{pointIdx}/tick", tickpoint.New(logger, taskService).ServeHTTP)
			r.Put("/tasks/{taskID}/points/{pointIdx}/untick", untickpoint.New(logger, taskService).ServeHTTP)
			r.Post("/tasks/{taskID}/files", addfile.New(logger, taskService).ServeHTTP)
			r.Delete("/tasks/{taskID}", remove.New(logger, taskService).ServeHTTP)
			r.Put("/tasks/{taskID}/assign", assign.New(logger, taskService).ServeHTTP)

			// Admin-only endpoints
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Post("/auth/create-user", usercreate.New(logger, authService).ServeHTTP)
				r.Get("/auth/users", userlist.New(logger, authService).ServeHTTP)
				r.Delete("/auth/users/{userID}", userremove.New(logger, authService).ServeHTTP)
				r.Get("/tasks/admin/dashboard", dashboard.New(logger, taskService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
