// Package productplans отдает доступные тарифные планы продукта.
package productplans

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает запрос тарифов продукта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает запрос тарифов продукта.
type Service interface {
	ListProductPlans(ctx context.Context, productID int64) ([]models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тарифные планы продукта
// @Description Возвращает активные и доступные планы, упорядоченные по цене.
// @Tags Products
// @Produce json
// @Param id path int true "ID продукта"
// @Success 200 {object} response.Response{data=[]models.Plan}
// @Failure 404 {object} response.ErrorResponse "Продукт не найден"
// @Router /products/{id}/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.productplans"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	plans, err := h.service.ListProductPlans(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, plans)
}
