package middlewarectx

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/neuro-store/internal/http/response"
	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/lib/metrics"
	"github.com/magabrotheeeer/neuro-store/internal/lib/ratelimit"
)

// Limiter решает, пропустить ли очередной запрос клиента.
type Limiter interface {
	Allow(ctx context.Context, policy string, rate ratelimit.Rate, client string) (bool, time.Duration)
}

// RateLimitMiddleware ограничивает частоту запросов с одного IP по политике policy.
// При превышении отвечает 429 с заголовком Retry-After.
func RateLimitMiddleware(limiter Limiter, policy string, rate ratelimit.Rate, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := limiter.Allow(r.Context(), policy, rate, clientIP(r))
			if !allowed {
				metrics.RateLimitedTotal.WithLabelValues(policy).Inc()
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))

				log := log.With(
					slog.String("op", "middlewarectx.RateLimitMiddleware"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				response.Fail(w, r, log, apperr.New(apperr.KindRateLimit, "Превышен лимит запросов").
					WithDetails(map[string]any{"limit": rate.String(), "retry_after": seconds}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	return ratelimit.ClientIP(r)
}
