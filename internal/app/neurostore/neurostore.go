// Package neurostore собирает приложение магазина: хранилище, кеш, брокер событий,
// сервисы и HTTP-сервер.
package neurostore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/neuro-store/internal/cache"
	"github.com/magabrotheeeer/neuro-store/internal/config"
	"github.com/magabrotheeeer/neuro-store/internal/http/handlers/health"
	"github.com/magabrotheeeer/neuro-store/internal/lib/jwt"
	"github.com/magabrotheeeer/neuro-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/neuro-store/internal/lib/ratelimit"
	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
	"github.com/magabrotheeeer/neuro-store/internal/migrations"
	adminservice "github.com/magabrotheeeer/neuro-store/internal/services/admin"
	authservice "github.com/magabrotheeeer/neuro-store/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/neuro-store/internal/services/catalog"
	paymentservice "github.com/magabrotheeeer/neuro-store/internal/services/payment"
	roleservice "github.com/magabrotheeeer/neuro-store/internal/services/roles"
	subservice "github.com/magabrotheeeer/neuro-store/internal/services/subscription"
	"github.com/magabrotheeeer/neuro-store/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App приложение магазина.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	redis  *cache.Cache
	amqp   *amqp.Connection
	ch     *amqp.Channel
}

// New подключается к зависимостям, применяет миграции и собирает маршруты.
// Redis и RabbitMQ необязательны: без Redis кеш отключается, а лимиты считаются
// локально; без RabbitMQ события только логируются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var (
		catalogCache catalogservice.Cache = cache.Noop{}
		rdb          *redis.Client
	)
	if cfg.RedisConnection.Enabled {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis unavailable, cache disabled", sl.Err(err))
		} else {
			app.redis = c
			catalogCache = c
			rdb = c.Db
		}
	}

	var channel rabbitmq.Channel
	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", sl.Err(err))
		} else if ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange); err != nil {
			logger.Warn("rabbitmq channel setup failed, events disabled", sl.Err(err))
			_ = conn.Close()
		} else {
			app.amqp, app.ch = conn, ch
			channel = ch
		}
	}
	events := rabbitmq.NewPublisher(channel, cfg.Exchange, logger)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	services := Services{
		Auth: authservice.NewAuthService(db, jwtMaker, logger),
		Catalog: catalogservice.NewCatalogService(db, db, catalogCache, catalogservice.TTL{
			Products: cfg.ProductsTTL,
			Plans:    cfg.PlansTTL,
		}, logger),
		Subscription: subservice.NewSubscriptionService(db, events, cfg.Payments.Currency, logger),
		Payment:      paymentservice.NewPaymentService(db, events, cfg.VerificationCode, cfg.Payments.Currency, logger),
		Admin:        adminservice.NewAdminService(db, db, logger),
		Roles:        roleservice.NewRoleService(db, db, logger),
	}

	checks := map[string]health.Pinger{"postgres": db}
	if app.redis != nil {
		checks["redis"] = health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, Limits{
		Limiter:       ratelimit.New(rdb, logger),
		Default:       ratelimit.ParseRate(cfg.RateLimit.Default),
		Login:         ratelimit.ParseRate(cfg.Login),
		Register:      ratelimit.ParseRate(cfg.Register),
		Products:      ratelimit.ParseRate(cfg.RateLimit.Products),
		Subscriptions: ratelimit.ParseRate(cfg.Subscriptions),
	}, health.New(logger, checks))

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.amqp != nil {
		_ = a.amqp.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
