// Package create implements the HTTP handler for creating tasks.
//
// Any authenticated user may create a task for themselves; an assigned_to
// value pointing at someone else survives only for admin callers — the
// service strips it otherwise and the task goes to the creator.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/middlewarectx"
	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/lib/sl"
	"github.com/teamtask/taskboard/internal/models"
)

// Handler serves create-task requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the task creation business logic.
type Service interface {
	Create(ctx context.Context, caller models.Caller, req models.DummyTask) (*models.TaskView, error)
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
// @Summary Create a task
// @Description Creates a task owned by the caller. Assignment to another user is honored for admins only.
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Param request body models.DummyTask true "New task fields"
// @Success 200 {object} map[string]any "Created task"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.create"
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

	var req models.DummyTask
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

	task, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		log.Error("failed to create task", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not create task")))
		return
	}

	log.Info("created task", slog.String("id", task.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"task": task,
	}))
}
