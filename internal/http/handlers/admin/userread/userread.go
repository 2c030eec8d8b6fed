// Package userread отдает пользователя по id.
package userread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает чтение пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение пользователя.
type Service interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пользователь
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userread"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, user)
}
