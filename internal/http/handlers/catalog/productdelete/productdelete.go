// Package productdelete реализует удаление продукта.
package productdelete

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

// Handler обрабатывает удаление продукта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление продукта.
type Service interface {
	DeleteProduct(ctx context.Context, actor models.Principal, id int64) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление продукта
// @Description Продукт с заказами или подписками удалить нельзя.
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID продукта"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Есть связанные записи"
// @Router /products/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.productdelete"
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

	if err := h.service.DeleteProduct(r.Context(), actor, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("product deleted", slog.Int64("product_id", id))
	response.OK(w, r, map[string]string{"message": "Продукт удален"})
}
