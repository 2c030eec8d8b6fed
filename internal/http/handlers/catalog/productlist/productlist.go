// Package productlist отдает публичный каталог продуктов с фильтром по категории и пагинацией.
package productlist

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

// Handler обрабатывает запрос списка продуктов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение каталога.
type Service interface {
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список продуктов
// @Description Возвращает активные продукты. Ответ кешируется.
// @Tags Products
// @Produce json
// @Param category query string false "Категория"
// @Param skip query int false "Смещение"
// @Param limit query int false "Количество, не больше 100"
// @Success 200 {object} response.Response{data=[]models.Product}
// @Failure 429 {object} response.ErrorResponse
// @Router /products [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.productlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	skip, limit := request.Page(r, defaultLimit)
	products, err := h.service.ListProducts(r.Context(), models.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, products)
}
