package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
)

// ErrForbidden у пользователя нет нужной роли.
var ErrForbidden = apperr.Authorization("Недостаточно прав для выполнения операции")

// RequireRoles пропускает запрос, если у пользователя есть хотя бы одна из ролей.
// Должен стоять после JWTMiddleware.
func RequireRoles(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := log.With(
				slog.String("op", "middlewarectx.RequireRoles"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			p, ok := PrincipalFrom(r.Context())
			if !ok {
				response.Fail(w, r, log, ErrNotAuthenticated)
				return
			}
			if !p.HasRole(roles...) {
				response.Fail(w, r, log, ErrForbidden.WithDetails(map[string]any{"required_roles": roles}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
