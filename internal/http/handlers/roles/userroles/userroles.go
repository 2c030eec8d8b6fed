// Package userroles отдает роли произвольного пользователя.
package userroles

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает запрос ролей пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает запрос ролей пользователя.
type Service interface {
	UserRoles(ctx context.Context, userID int64) ([]models.Role, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Роли пользователя
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response{data=[]models.Role}
// @Failure 404 {object} response.ErrorResponse
// @Router /roles/user/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", "handlers.roles.userroles"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	roles, err := h.service.UserRoles(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, roles)
}
