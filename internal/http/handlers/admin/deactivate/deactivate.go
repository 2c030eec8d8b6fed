// Package deactivate выключает учетную запись пользователя.
// Администратор не может деактивировать сам себя.
package deactivate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает деактивацию пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает деактивацию пользователя.
type Service interface {
	Deactivate(ctx context.Context, actor models.Principal, id int64) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Деактивация пользователя
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse "Нельзя деактивировать самого себя"
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/users/{id}/deactivate [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.deactivate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	user, err := h.service.Deactivate(r.Context(), actor, id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user deactivated", slog.Int64("user_id", id))
	response.OK(w, r, user)
}
