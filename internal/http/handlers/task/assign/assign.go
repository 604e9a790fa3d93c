// Package assign implements the HTTP handler reassigning a task (admin only).
package assign

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/middlewarectx"
	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/lib/sl"
	"github.com/teamtask/taskboard/internal/models"
)

// Handler serves assign-task requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the reassignment business logic.
type Service interface {
	Assign(ctx context.Context, caller models.Caller, id, assignedTo string) (*models.TaskView, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Reassign a task
// @Description Hands the task to another user. Admin callers only.
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Param taskID path string true "Task ID"
// @Param request body models.DummyAssign true "New assignee"
// @Success 200 {object} map[string]any "Updated task"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Caller is not an admin"
// @Failure 404 {object} response.ErrorResponse "Task not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks/{taskID}/assign [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.assign"
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

	var req models.DummyAssign
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	task, err := h.service.Assign(r.Context(), caller, taskID, req.AssignedTo)
	if err != nil {
		log.Error("failed to assign task", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not assign task")))
		return
	}

	log.Info("assigned task", slog.String("id", taskID), slog.String("assigned_to", req.AssignedTo))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"task": task,
	}))
}
