// Package middlewarectx содержит HTTP middleware: проверку JWT и ролей,
// ограничение частоты запросов и сбор метрик.
//
// JWTMiddleware проверяет токен из заголовка Authorization, загружает пользователя
// и его роли и кладет Principal в контекст запроса. При ошибке возвращается 401
// в едином формате ошибок.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey ключ аутентифицированного пользователя в контексте.
const PrincipalKey Key = "principal"

// ErrNotAuthenticated запрос без валидного токена.
var ErrNotAuthenticated = apperr.Authentication("Не удалось проверить учетные данные")

// Authenticator проверяет токен и возвращает пользователя с ролями.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.Fail(w, r, log, ErrNotAuthenticated)
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				response.Fail(w, r, log, err)
				return
			}
			p.IPAddress = clientIP(r)
			p.UserAgent = r.UserAgent()

			ctx := context.WithValue(r.Context(), PrincipalKey, *p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom возвращает пользователя из контекста.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok && p.UserID != 0
}

// WithPrincipal кладет пользователя в контекст.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
