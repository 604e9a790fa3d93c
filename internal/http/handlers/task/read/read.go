// Package read implements the HTTP handler returning a single task by id.
// Tasks outside the caller's visibility answer not-found.
package read

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

// Handler serves read-task requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the task read business logic.
type Service interface {
	Read(ctx context.Context, caller models.Caller, id string) (*models.TaskView, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Get one task
// @Description Returns a single task by id with user references resolved. Tasks the caller may not see answer 404.
// @Tags Tasks
// @Produce  json
// @Param taskID path string true "Task ID"
// @Success 200 {object} map[string]any "Task"
// @Failure 400 {object} response.ErrorResponse "Missing task id"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Task not found or not visible"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks/{taskID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.read"
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

	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		log.Error("missing task id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing task id"))
		return
	}

	task, err := h.service.Read(r.Context(), caller, taskID)
	if err != nil {
		log.Error("failed to read task", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not read task")))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"task": task,
	}))
}
