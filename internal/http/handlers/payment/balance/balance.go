// Package balance отдает баланс текущего пользователя.
package balance

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает запрос баланса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает запрос баланса.
type Service interface {
	Balance(ctx context.Context, p models.Principal) (*models.Balance, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Баланс
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Balance}
// @Failure 401 {object} response.ErrorResponse
// @Router /payments/balance [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.balance"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}

	b, err := h.service.Balance(r.Context(), p)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, b)
}
