// Package myroles отдает роли текущего пользователя.
package myroles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Handler обрабатывает запрос ролей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает получение ролей из Principal.
type Service interface {
	MyRoles(p models.Principal) models.UserRoles
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Роли текущего пользователя
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.UserRoles}
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me/roles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log := h.log.With(
			slog.String("op", "handlers.auth.myroles"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		response.Fail(w, r, log, middlewarectx.ErrNotAuthenticated)
		return
	}
	response.OK(w, r, h.service.MyRoles(p))
}
