// Package planattach привязывает тарифный план к продукту.
package planattach

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

// Handler обрабатывает привязку тарифа к продукту.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает привязку тарифа к продукту.
type Service interface {
	AttachPlan(ctx context.Context, actor models.Principal, productID, planID int64) (*models.ProductPlan, error)
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
// @Summary Привязка плана к продукту
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID продукта"
// @Param request body models.AttachPlanRequest true "План"
// @Success 201 {object} response.Response{data=models.ProductPlan}
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "План уже привязан"
// @Router /products/{id}/plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.planattach"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}
	productID, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	var req models.AttachPlanRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	link, err := h.service.AttachPlan(r.Context(), actor, productID, req.PlanID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("plan attached", slog.Int64("product_id", productID), slog.Int64("plan_id", req.PlanID))
	response.Created(w, r, link)
}
