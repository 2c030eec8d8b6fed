// Package roleassign назначает роль пользователю.
package roleassign

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

// Handler обрабатывает назначение роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает назначение роли.
type Service interface {
	Assign(ctx context.Context, actor models.Principal, req models.RoleAssignment) (*models.UserRole, error)
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
// @Summary Назначение роли
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RoleAssignment true "Пользователь и роль"
// @Success 201 {object} response.Response{data=models.UserRole}
// @Failure 400 {object} response.ErrorResponse "Роль уже назначена этому пользователю"
// @Failure 404 {object} response.ErrorResponse
// @Router /roles/assign [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.roles.roleassign"
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

	ur, err := h.service.Assign(r.Context(), actor, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("role assigned", slog.Int64("user_id", req.UserID), slog.Int64("role_id", req.RoleID))
	response.Created(w, r, ur)
}
