// Package topup реализует пополнение баланса банковской картой.
//
// Пополнение создает ожидающий платеж. Зачисление происходит только после
// подтверждения кодом через verify.
package topup

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

// Handler обрабатывает запрос пополнения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает пополнение баланса.
type Service interface {
	TopUp(ctx context.Context, p models.Principal, req models.TopUpRequest) (*models.TopUpResult, error)
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
// @Summary Пополнение баланса
// @Description Создает ожидающий платеж картой. Данные карты не сохраняются.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TopUpRequest true "Сумма и карта"
// @Success 201 {object} response.Response{data=models.TopUpResult}
// @Failure 400 {object} response.ErrorResponse "Неверная дата истечения карты"
// @Failure 422 {object} response.ErrorResponse
// @Router /payments/topup-balance [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.topup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}

	var req models.TopUpRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	res, err := h.service.TopUp(r.Context(), p, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("top-up created", slog.Int64("payment_id", res.PaymentID))
	response.Created(w, r, res)
}
