// Package statistics отдает сводную статистику магазина.
package statistics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает запрос статистики магазина.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает запрос статистики магазина.
type Service interface {
	Statistics(ctx context.Context) (*models.Statistics, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Statistics}
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/statistics [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", "handlers.admin.statistics"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	st, err := h.service.Statistics(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, st)
}
