// Package productread отдает один активный продукт.
package productread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает чтение продукта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение продукта.
type Service interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Продукт
// @Tags Products
// @Produce json
// @Param id path int true "ID продукта"
// @Success 200 {object} response.Response{data=models.Product}
// @Failure 404 {object} response.ErrorResponse "Продукт не найден"
// @Router /products/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.productread"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, product)
}
