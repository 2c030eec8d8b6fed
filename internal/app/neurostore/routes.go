package neurostore

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/admin/activate"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/admin/deactivate"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/admin/statistics"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/admin/userread"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/auth/myroles"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/planattach"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/plancreate"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/plandelete"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/planupdate"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/productcreate"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/productdelete"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/productlist"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/productplans"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/productread"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/catalog/productupdate"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/payment/balance"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/payment/topup"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/payment/topupstats"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/payment/verify"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/roles/roleassign"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/roles/rolecreate"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/roles/rolelist"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/roles/rolerevoke"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/roles/userroles"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/subscription/purchase"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/subscription/usage"
	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/lib/ratelimit"
	"github.com/magabrotheeeer/neuro-store/internal/models"
	adminservice "github.com/magabrotheeeer/neuro-store/internal/services/admin"
	authservice "github.com/magabrotheeeer/neuro-store/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/neuro-store/internal/services/catalog"
	paymentservice "github.com/magabrotheeeer/neuro-store/internal/services/payment"
	roleservice "github.com/magabrotheeeer/neuro-store/internal/services/roles"
	subservice "github.com/magabrotheeeer/neuro-store/internal/services/subscription"
)

// Services сервисы, которые обслуживают маршруты.
type Services struct {
	Auth         *authservice.AuthService
	Catalog      *catalogservice.CatalogService
	Subscription *subservice.SubscriptionService
	Payment      *paymentservice.Service
	Admin        *adminservice.AdminService
	Roles        *roleservice.RoleService
}

// Limits лимитер и лимиты по политикам.
type Limits struct {
	Limiter       middlewarectx.Limiter
	Default       ratelimit.Rate
	Login         ratelimit.Rate
	Register      ratelimit.Rate
	Products      ratelimit.Rate
	Subscriptions ratelimit.Rate
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, l Limits, healthHandler http.Handler) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	limit := func(policy string, rate ratelimit.Rate) func(http.Handler) http.Handler {
		return middlewarectx.RateLimitMiddleware(l.Limiter, policy, rate, logger)
	}
	authenticated := middlewarectx.JWTMiddleware(s.Auth, logger)
	adminOnly := middlewarectx.RequireRoles(logger, models.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limit("register", l.Register)).Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.With(limit("login", l.Login)).Post("/login", login.New(logger, s.Auth).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(authenticated, limit("default", l.Default))
				r.Get("/me", me.New(logger, s.Auth).ServeHTTP)
				r.Get("/me/roles", myroles.New(logger, s.Auth).ServeHTTP)
			})
		})

		r.Route("/products", func(r chi.Router) {
			// Открытый каталог
			r.Group(func(r chi.Router) {
				r.Use(limit("products", l.Products))
				r.Get("/", productlist.New(logger, s.Catalog).ServeHTTP)
				r.Get("/{id}", productread.New(logger, s.Catalog).ServeHTTP)
				r.Get("/{id}/plans", productplans.New(logger, s.Catalog).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticated, adminOnly)
				r.Post("/", productcreate.New(logger, s.Catalog).ServeHTTP)
				r.Put("/{id}", productupdate.New(logger, s.Catalog).ServeHTTP)
				r.Delete("/{id}", productdelete.New(logger, s.Catalog).ServeHTTP)
				r.Post("/{id}/plans", planattach.New(logger, s.Catalog).ServeHTTP)
			})
		})

		r.Route("/plans", func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/", plancreate.New(logger, s.Catalog).ServeHTTP)
			r.Put("/{id}", planupdate.New(logger, s.Catalog).ServeHTTP)
			r.Delete("/{id}", plandelete.New(logger, s.Catalog).ServeHTTP)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(authenticated)
			r.With(limit("subscriptions", l.Subscriptions)).Get("/", list.New(logger, s.Subscription).ServeHTTP)
			r.With(limit("subscriptions", l.Subscriptions)).Post("/", purchase.New(logger, s.Subscription).ServeHTTP)

			// Доступ владельцу или администратору проверяет сервис
			r.Group(func(r chi.Router) {
				r.Use(limit("default", l.Default))
				r.Get("/{id}", read.New(logger, s.Subscription).ServeHTTP)
				r.Get("/{id}/status", status.New(logger, s.Subscription).ServeHTTP)
				r.Put("/{id}/cancel", cancel.New(logger, s.Subscription).ServeHTTP)
				r.Post("/{id}/usage", usage.New(logger, s.Subscription).ServeHTTP)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(authenticated, limit("default", l.Default))
			r.Post("/topup-balance", topup.New(logger, s.Payment).ServeHTTP)
			r.Post("/verify-payment", verify.New(logger, s.Payment).ServeHTTP)
			r.Get("/balance", balance.New(logger, s.Payment).ServeHTTP)
			r.With(adminOnly).Get("/topup-statistics", topupstats.New(logger, s.Payment).ServeHTTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated)
			r.With(middlewarectx.RequireRoles(logger, models.RoleAdmin, models.RoleModerator)).
				Get("/statistics", statistics.New(logger, s.Admin).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/users", userlist.New(logger, s.Admin).ServeHTTP)
				r.Get("/users/{id}", userread.New(logger, s.Admin).ServeHTTP)
				r.Put("/users/{id}/activate", activate.New(logger, s.Admin).ServeHTTP)
				r.Put("/users/{id}/deactivate", deactivate.New(logger, s.Admin).ServeHTTP)
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Get("/", rolelist.New(logger, s.Roles).ServeHTTP)
			r.Post("/", rolecreate.New(logger, s.Roles).ServeHTTP)
			r.Post("/assign", roleassign.New(logger, s.Roles).ServeHTTP)
			r.Delete("/revoke", rolerevoke.New(logger, s.Roles).ServeHTTP)
			r.Get("/user/{id}", userroles.New(logger, s.Roles).ServeHTTP)
		})
	})

	r.Handle("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
