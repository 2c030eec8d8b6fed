// Package plancreate реализует создание тарифного плана.
package plancreate

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

// Handler обрабатывает создание плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает создание плана.
type Service interface {
	CreatePlan(ctx context.Context, actor models.Principal, req models.PlanRequest) (*models.Plan, error)
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
// @Summary Создание тарифного плана
// @Description Цена должна быть положительной и иметь не больше двух знаков после запятой.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PlanRequest true "План"
// @Success 201 {object} response.Response{data=models.Plan}
// @Failure 422 {object} response.ErrorResponse
// @Router /plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.plancreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}

	var req models.PlanRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), actor, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("plan created", slog.Int64("plan_id", plan.ID))
	response.Created(w, r, plan)
}
