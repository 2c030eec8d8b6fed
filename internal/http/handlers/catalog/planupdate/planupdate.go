// Package planupdate реализует изменение тарифного плана.
package planupdate

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

// Handler обрабатывает изменение тарифного плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает изменение тарифного плана.
type Service interface {
	UpdatePlan(ctx context.Context, actor models.Principal, id int64, req models.PlanRequest) (*models.Plan, error)
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
// @Summary Изменение тарифного плана
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID плана"
// @Param request body models.PlanRequest true "План"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /plans/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.planupdate"
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

	var req models.PlanRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, log, response.Invalid(err))
		return
	}

	plan, err := h.service.UpdatePlan(r.Context(), actor, id, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("plan updated", slog.Int64("plan_id", id))
	response.OK(w, r, plan)
}
