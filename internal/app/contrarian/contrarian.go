package contrarian

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/contrarian-report/internal/cache"
	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/content"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/jwt"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/metrics"
	"github.com/magabrotheeeer/contrarian-report/internal/migrations"
	"github.com/magabrotheeeer/contrarian-report/internal/paymentprovider"
	"github.com/magabrotheeeer/contrarian-report/internal/rabbitmq"
	accountservice "github.com/magabrotheeeer/contrarian-report/internal/services/account"
	articleservice "github.com/magabrotheeeer/contrarian-report/internal/services/articles"
	authservice "github.com/magabrotheeeer/contrarian-report/internal/services/auth"
	diagnosticsservice "github.com/magabrotheeeer/contrarian-report/internal/services/diagnostics"
	subservice "github.com/magabrotheeeer/contrarian-report/internal/services/subscription"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
	"github.com/magabrotheeeer/contrarian-report/internal/web"
)

const shutdownTimeout = 15 * time.Second

// App веб-приложение.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	cache    *cache.Cache
	migrator *migrations.Migrator
	conn     *amqp.Connection
	ch       *amqp.Channel
}

// New поднимает зависимости и собирает HTTP-сервер. Старт отклоняется, если схема
// базы отстает от встроенных миграций и проверка не отключена.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.contrarian.New"

	a := &App{logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.db = db

	migrator, err := migrations.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.migrator = migrator
	if err := migrator.Check(); err != nil {
		if !cfg.SkipMigrationCheck {
			return nil, fmt.Errorf("%s: run `contrarianctl migrate up`: %w", op, err)
		}
		logger.Warn("starting with an outdated schema", sl.Err(err))
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("%s: cache not initialized: %w", op, err)
	}
	a.cache = cacheRedis

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}
	a.conn = conn
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}
	a.ch = ch
	publisher := rabbitmq.NewPublisher(ch)

	var provider interface {
		subservice.Provider
		accountservice.Canceler
	} = paymentprovider.Disabled{}
	if cfg.PayPal.Enabled {
		provider = paymentprovider.NewClient(cfg.PayPal)
	} else {
		logger.Warn("payment provider integration is disabled")
	}

	templates, err := web.Load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	maker := jwt.NewJWTMaker(cfg.SecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(logger, db, cacheRedis, maker, cfg.SessionTTL)
	deps := Deps{
		Logger:        logger,
		Session:       cfg.Session,
		Auth:          authService,
		Subscriptions: subservice.NewSubscriptionService(logger, db, provider, cacheRedis, publisher),
		Articles:      articleservice.NewArticleService(logger, db, content.NewRenderer()),
		Accounts:      accountservice.NewAccountService(logger, db, provider, authService),
		Diagnostics:   diagnosticsservice.NewDiagnosticsService(logger, cfg, db, migrator),
		DB:            db,
		Templates:     templates,
		Metrics:       metrics.NewHTTP(),
		LoginLimiter:  middlewarectx.NewIPLimiter(cfg.RateLimit),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, deps)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	ok = true
	return a, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close RabbitMQ channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close RabbitMQ connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.migrator != nil {
		if err := a.migrator.Close(); err != nil {
			a.logger.Error("failed to close migrator", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
