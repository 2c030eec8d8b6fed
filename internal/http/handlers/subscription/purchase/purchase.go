// Package purchase реализует покупку подписки с оплатой с внутреннего баланса.
//
// Списание, создание заказа, платежа и подписки выполняются сервисом атомарно.
// При нехватке средств клиент получает BusinessRuleViolation и баланс не меняется.
package purchase

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/http/request"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает покупку подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает покупку подписки.
type Service interface {
	Purchase(ctx context.Context, p models.Principal, req models.PurchaseRequest) (*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Покупка подписки
// @Description Списывает цену плана с баланса и создает активную подписку.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PurchaseRequest true "Продукт и план"
// @Success 201 {object} response.Response{data=models.Subscription}
// @Failure 400 {object} response.ErrorResponse "Недостаточно средств на балансе"
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Продукт или план недоступен"
// @Failure 429 {object} response.ErrorResponse
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.purchase"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}

	var req models.PurchaseRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	sub, err := h.service.Purchase(r.Context(), p, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("subscription purchased",
		slog.Int64("subscription_id", sub.ID),
		slog.Int64("user_id", p.UserID),
	)
	response.Created(w, r, sub)
}
