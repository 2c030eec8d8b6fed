// Package rolerevoke снимает роль с пользователя.
package rolerevoke

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает снятие роли с пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает снятие роли с пользователя.
type Service interface {
	Revoke(ctx context.Context, actor models.Principal, req models.RoleAssignment) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Снятие роли
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RoleAssignment true "Пользователь и роль"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Назначение роли не найдено"
// @Router /roles/revoke [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.roles.rolerevoke"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}

	var req models.RoleAssignment
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	if err := h.service.Revoke(r.Context(), actor, req); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("role revoked", slog.Int64("user_id", req.UserID), slog.Int64("role_id", req.RoleID))
	response.OK(w, r, map[string]string{"message": "Роль снята"})
}
