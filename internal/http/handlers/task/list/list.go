// Package list implements the HTTP handler listing tasks visible to the
// caller, newest created first. The own-or-assigned filter for non-admins is
// applied server-side.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/middlewarectx"
	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/lib/sl"
	"github.com/teamtask/taskboard/internal/models"
)

// Handler serves list-tasks requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the task listing business logic.
type Service interface {
	List(ctx context.Context, caller models.Caller) ([]*models.TaskView, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List visible tasks
// @Description Returns tasks newest first. Admins see all tasks, other callers only tasks they created or are assigned to.
// @Tags Tasks
// @Produce  json
// @Success 200 {object} map[string]any "Task list"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.list"
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

	tasks, err := h.service.List(r.Context(), caller)
	if err != nil {
		log.Error("failed to list tasks", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not list tasks")))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tasks": tasks,
	}))
}
