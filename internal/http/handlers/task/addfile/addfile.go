// Package addfile implements the HTTP handler attaching a file reference
// to a task. Only metadata is stored; blobs live elsewhere.
package addfile

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

// Handler serves add-file requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the attachment business logic.
type Service interface {
	AddFile(ctx context.Context, caller models.Caller, id string, req models.DummyFile) (*models.TaskView, error)
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
// @Summary Attach a file reference to a task
// @Description Appends file metadata to the task. The bytes themselves are stored elsewhere.
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Param taskID path string true "Task ID"
// @Param request body models.DummyFile true "File metadata"
// @Success 200 {object} map[string]any "Updated task"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Task not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks/{taskID}/files [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.addfile"
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

	var req models.DummyFile
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

	task, err := h.service.AddFile(r.Context(), caller, taskID, req)
	if err != nil {
		log.Error("failed to attach file", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not attach file")))
		return
	}

	log.Info("attached file", slog.String("id", taskID), slog.String("file", req.Filename))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"task": task,
	}))
}
