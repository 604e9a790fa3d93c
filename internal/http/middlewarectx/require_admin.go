package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamtask/taskboard/internal/http/response"
	"github.com/teamtask/taskboard/internal/policy"
)

// RequireAdmin returns a middleware that lets only admin callers through.
// It must run after JWTMiddleware. Non-admin callers get 403 Forbidden.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAdmin"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			caller, ok := CallerFromContext(r.Context())
			if !ok {
				log.Error("caller missing in context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !policy.CanManageUsers(caller.Role) {
				log.Error("admin privilege required", slog.String("uid", caller.UID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("admin only"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
