// Package health реализует проверку готовности сервиса.
//
// Handler пингует зарегистрированные зависимости. Недоступность любой из них
// дает 503 со статусом каждой зависимости.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc адаптер функции к Pinger.
type PingFunc func(ctx context.Context) error

// Ping вызывает f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Status ответ проверки.
type Status struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// Handler обрабатывает /health.
type Handler struct {
	log    *slog.Logger
	checks map[string]Pinger
}

// New создает Handler с набором проверок по имени зависимости.
func New(log *slog.Logger, checks map[string]Pinger) *Handler {
	return &Handler{log: log, checks: checks}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce json
// @Success 200 {object} Status
// @Failure 503 {object} Status
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	st := Status{Status: "ok", Dependencies: make(map[string]string, len(h.checks))}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
			st.Dependencies[name] = "unavailable"
			st.Status = "degraded"
			continue
		}
		st.Dependencies[name] = "ok"
	}

	if st.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, st)
}
