// Package verify подтверждает ожидающее пополнение кодом верификации.
package verify

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

// Handler обрабатывает подтверждение платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает подтверждение платежа.
type Service interface {
	Verify(ctx context.Context, p models.Principal, req models.VerifyPaymentRequest) (*models.VerifyResult, error)
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
// @Summary Подтверждение пополнения
// @Description Зачисляет сумму ожидающего платежа на баланс. Повторное подтверждение вернет 404.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VerifyPaymentRequest true "Платеж и код"
// @Success 200 {object} response.Response{data=models.VerifyResult}
// @Failure 400 {object} response.ErrorResponse "Неверный код верификации"
// @Failure 404 {object} response.ErrorResponse "Платеж не найден"
// @Router /payments/verify-payment [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}

	var req models.VerifyPaymentRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	res, err := h.service.Verify(r.Context(), p, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("top-up verified", slog.Int64("payment_id", res.PaymentID))
	response.OK(w, r, res)
}
