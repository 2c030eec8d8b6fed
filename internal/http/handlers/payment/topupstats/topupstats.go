// Package topupstats отдает статистику пополнений для администратора.
package topupstats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает запрос статистики пополнений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает запрос статистики пополнений.
type Service interface {
	TopUpStatistics(ctx context.Context) (*models.TopUpStatistics, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика пополнений
// @Description Сумма и количество завершенных пополнений, помесячно за последние 12 месяцев.
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.TopUpStatistics}
// @Failure 403 {object} response.ErrorResponse
// @Router /payments/topup-statistics [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.topupstats"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	st, err := h.service.TopUpStatistics(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, st)
}
