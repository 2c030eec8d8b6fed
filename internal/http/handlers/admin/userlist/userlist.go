// Package userlist отдает список пользователей для администратора.
package userlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

const defaultLimit = 100

// Handler обрабатывает запрос списка пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение пользователей.
type Service interface {
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пользователи
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Смещение"
// @Param limit query int false "Количество, не больше 1000"
// @Success 200 {object} response.Response{data=[]models.User}
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	skip, limit := request.Page(r, defaultLimit)
	users, err := h.service.ListUsers(r.Context(), skip, limit)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, users)
}
