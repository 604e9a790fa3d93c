// Package remove implements the HTTP handler for deleting users (admin only).
// Deletion is hard; tasks referencing the user keep their dangling references.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/lib/sl"
)

// Handler serves delete-user requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the user management business logic.
type Service interface {
	DeleteUser(ctx context.Context, uid string) error
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Delete a user
// @Description Permanently deletes a user. Tasks referencing the user keep their references. Admin callers only.
// @Tags Users
// @Produce  json
// @Param userID path string true "User UID"
// @Success 200 {object} response.Response "User deleted"
// @Failure 400 {object} response.ErrorResponse "Missing user id"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Caller is not an admin"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /auth/users/{userID} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		log.Error("missing user id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user id"))
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		log.Error("failed to delete user", sl.Err(err))
		w.WriteHeader(apperr.HTTPStatus(err))
		render.JSON(w, r, response.Error(apperr.Message(err, "could not delete user")))
		return
	}

	log.Info("deleted user", slog.String("uid", userID))
	render.JSON(w, r, response.OK())
}
