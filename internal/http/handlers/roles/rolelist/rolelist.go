// Package rolelist отдает справочник ролей.
package rolelist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает запрос списка ролей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает запрос списка ролей.
type Service interface {
	List(ctx context.Context) ([]models.Role, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Роли
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Role}
// @Failure 403 {object} response.ErrorResponse
// @Router /roles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", "handlers.roles.rolelist"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	roles, err := h.service.List(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, roles)
}
