// Package listbystatus implements the HTTP handler listing the caller's
// visible tasks in one kanban column. An empty column yields an empty list.
package listbystatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/middlewarectx"
	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/lib/sl"
	"github.com/teamtask/taskboard/internal/models"
)

// Handler serves list-by-status requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the task listing business logic.
type Service interface {
	ListByStatus(ctx context.Context, caller models.Caller, status string) ([]*models.TaskView, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List tasks in one status column
// @Description Returns the caller's visible tasks with the given status. An empty column yields an empty list.
// @Tags Tasks
// @Produce  json
// @Param status path string true "Task status" Enums(today, this-week, this-month, later, done, canceled)
// @Success 200 {object} map[string]any "Task list"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Unknown status"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks/status/{status} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.listbystatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := middlewarectx.CallerFromContext(r.Context())
	if !ok {
		log.Error("caller not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status := chi.URLParam(r, "status")
	tasks, err := h.service.ListByStatus(r.Context(), caller, status)
	if err != nil {
		log.Error("failed to list tasks by status", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not list tasks")))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tasks": tasks,
	}))
}
