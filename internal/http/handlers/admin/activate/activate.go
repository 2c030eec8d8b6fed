// Package activate включает учетную запись пользователя.
package activate

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

// Handler обрабатывает активацию пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает активацию пользователя.
type Service interface {
	Activate(ctx context.Context, actor models.Principal, id int64) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Активация пользователя
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/users/{id}/activate [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.activate"
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

	user, err := h.service.Activate(r.Context(), actor, id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user activated", slog.Int64("user_id", id))
	response.OK(w, r, user)
}
