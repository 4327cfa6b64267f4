// Package contrarian собирает веб-приложение: хранилище, кеш, сервисы и маршруты.
package contrarian

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/contrarian-report/docs"
	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/account/login"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/account/logout"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/account/password"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/account/profile"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/account/register"
	accountremove "github.com/magabrotheeeer/contrarian-report/internal/http/handlers/account/remove"
	accountupdate "github.com/magabrotheeeer/contrarian-report/internal/http/handlers/account/update"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/admin/diagnose"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/articles/browse"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/articles/read"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/health"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/home"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/subscription/cancel"
	subscriptioncreate "github.com/magabrotheeeer/contrarian-report/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/subscription/dashboard"
	"github.com/magabrotheeeer/contrarian-report/internal/http/handlers/subscription/plans"
	writercreate "github.com/magabrotheeeer/contrarian-report/internal/http/handlers/writer/create"
	writerlist "github.com/magabrotheeeer/contrarian-report/internal/http/handlers/writer/list"
	writerremove "github.com/magabrotheeeer/contrarian-report/internal/http/handlers/writer/remove"
	writerupdate "github.com/magabrotheeeer/contrarian-report/internal/http/handlers/writer/update"
	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/metrics"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	accountservice "github.com/magabrotheeeer/contrarian-report/internal/services/account"
	articleservice "github.com/magabrotheeeer/contrarian-report/internal/services/articles"
	authservice "github.com/magabrotheeeer/contrarian-report/internal/services/auth"
	diagnosticsservice "github.com/magabrotheeeer/contrarian-report/internal/services/diagnostics"
	subservice "github.com/magabrotheeeer/contrarian-report/internal/services/subscription"
	"github.com/magabrotheeeer/contrarian-report/internal/web"
)

// Deps зависимости, из которых строятся обработчики.
type Deps struct {
	Logger        *slog.Logger
	Session       config.Session
	Auth          *authservice.Service
	Subscriptions *subservice.Service
	Articles      *articleservice.Service
	Accounts      *accountservice.Service
	Diagnostics   *diagnosticsservice.Service
	DB            health.Pinger
	Templates     *web.Templates
	Metrics       *metrics.HTTP
	LoginLimiter  *middlewarectx.IPLimiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middlewarectx.Recoverer(logger),
		middleware.URLFormat,
		d.Metrics.Middleware,
	)

	authenticated := middlewarectx.SessionAuth(logger, d.Auth, d.Session.CookieName)

	r.Get("/", home.New(logger, d.Subscriptions, d.Templates).ServeHTTP)
	r.Get("/healthz", health.New(logger, d.DB).ServeHTTP)
	r.Handle("/metrics", d.Metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.LoginLimiter))
			r.Post("/account/register", register.New(logger, d.Auth).ServeHTTP)
			r.Post("/account/login", login.New(logger, d.Auth, d.Session).ServeHTTP)
		})
		logoutHandler := logout.New(logger, d.Auth, d.Session)
		r.Get("/account/logout", logoutHandler.ServeHTTP)
		r.Post("/account/logout", logoutHandler.ServeHTTP)

		// Webhook endpoint (без аутентификации, подпись проверяет провайдер)
		r.Post("/payments/webhook", paymentwebhook.New(logger, d.Subscriptions).ServeHTTP)

		// Группа с аутентификацией по сессии
		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/account/profile", profile.New(logger, d.Accounts).ServeHTTP)
			r.Put("/account/profile", accountupdate.New(logger, d.Accounts).ServeHTTP)
			r.Post("/account/password", password.New(logger, d.Auth, d.Session).ServeHTTP)
			r.Delete("/account", accountremove.New(logger, d.Accounts, d.Session).ServeHTTP)

			r.Route("/client", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleClient))
				r.Get("/dashboard", dashboard.New(logger, d.Subscriptions).ServeHTTP)
				r.Get("/plans", plans.New(logger, d.Subscriptions).ServeHTTP)
				r.Post("/subscriptions", subscriptioncreate.New(logger, d.Subscriptions).ServeHTTP)
				r.Delete("/subscriptions/{id}", cancel.New(logger, d.Subscriptions).ServeHTTP)
			})

			r.Route("/articles", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleClient))
				r.Get("/", browse.New(logger, d.Articles).ServeHTTP)
				r.With(middlewarectx.RequireActiveSubscription(logger, d.Subscriptions)).
					Get("/{id}", read.New(logger, d.Articles).ServeHTTP)
			})

			r.Route("/writer/articles", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleWriter))
				r.Get("/", writerlist.New(logger, d.Articles).ServeHTTP)
				r.Post("/", writercreate.New(logger, d.Articles).ServeHTTP)
				r.Put("/{id}", writerupdate.New(logger, d.Articles).ServeHTTP)
				r.Delete("/{id}", writerremove.New(logger, d.Articles).ServeHTTP)
			})
		})
	})

	// Диагностика только для администратора
	r.Group(func(r chi.Router) {
		r.Use(authenticated, middlewarectx.RequireRole(logger, models.RoleAdmin))
		diagnoseHandler := diagnose.New(logger, d.Diagnostics, d.Templates)
		r.Get("/admin/diagnose-db", diagnoseHandler.ServeHTTP)
		r.Get("/db-diagnose", diagnoseHandler.ServeHTTP)
	})
}
