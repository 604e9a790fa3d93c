// Package dashboard implements the HTTP handler returning the admin
// overview: every task, every user and aggregate counters.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/lib/sl"
	"github.com/teamtask/taskboard/internal/models"
)

// Handler serves dashboard requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the dashboard business logic.
type Service interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Admin dashboard
// @Description Returns all tasks, all users and aggregate progress/status counters.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Dashboard payload"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Caller is not an admin"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks/admin/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.dashboard"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	dash, err := h.service.Dashboard(r.Context())
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not build dashboard")))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"dashboard": dash,
	}))
}
