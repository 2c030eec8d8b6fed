// Package rolecreate реализует создание роли.
package rolecreate

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

// Handler обрабатывает создание роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает создание роли.
type Service interface {
	Create(ctx context.Context, actor models.Principal, req models.RoleRequest) (*models.Role, error)
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
// @Summary Создание роли
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RoleRequest true "Роль"
// @Success 201 {object} response.Response{data=models.Role}
// @Failure 400 {object} response.ErrorResponse "Роль с таким именем уже существует"
// @Failure 422 {object} response.ErrorResponse
// @Router /roles [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.roles.rolecreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}

	var req models.RoleRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	role, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("role created", slog.String("role", role.Name))
	response.Created(w, r, role)
}
