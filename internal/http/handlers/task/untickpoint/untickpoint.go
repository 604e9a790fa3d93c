// Package untickpoint implements the HTTP handler removing the calling
// user's completion mark from a checklist point.
package untickpoint

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/middlewarectx"
	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/lib/sl"
	"github.com/teamtask/taskboard/internal/models"
)

// Handler serves untick-point requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the checklist business logic.
type Service interface {
	UntickPoint(ctx context.Context, caller models.Caller, id string, pointIdx int) (*models.TaskView, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Untick a checklist point
// @Description Removes the caller's completion mark from one point and recomputes progress. Removing an absent mark is a no-op.
// @Tags Tasks
// @Produce  json
// @Param taskID path string true "Task ID"
// @Param pointIdx path int true "Point index"
// @Success 200 {object} map[string]any "Updated task"
// @Failure 400 {object} response.ErrorResponse "Invalid point index"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Task or point not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /tasks/{taskID}/points/{pointIdx}/untick [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.untickpoint"
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
	pointIdx, err := strconv.Atoi(chi.URLParam(r, "pointIdx"))
	if err != nil || pointIdx < 0 {
		log.Error("invalid point index in url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid point index"))
		return
	}

	task, err := h.service.UntickPoint(r.Context(), caller, taskID, pointIdx)
	if err != nil {
		log.Error("failed to untick point", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not untick point")))
		return
	}

	log.Info("unticked point", slog.String("id", taskID), slog.Int("point", pointIdx))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"task": task,
	}))
}
