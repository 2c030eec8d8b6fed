// Package plandelete реализует удаление тарифного плана.
package plandelete

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

// Handler обрабатывает удаление тарифного плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление тарифного плана.
type Service interface {
	DeletePlan(ctx context.Context, actor models.Principal, id int64) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление тарифного плана
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID плана"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.plandelete"
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

	if err := h.service.DeletePlan(r.Context(), actor, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("plan deleted", slog.Int64("plan_id", id))
	response.OK(w, r, map[string]string{"message": "Тарифный план удален"})
}
