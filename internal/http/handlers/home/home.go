// Package home отдает главную HTML-страницу.
package home

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// Service возвращает активные тарифы.
type Service interface {
	Plans(ctx context.Context) ([]*models.PlanChoice, error)
}

// Renderer исполняет HTML-шаблон.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// Handler отдает главную страницу.
type Handler struct {
	log      *slog.Logger
	service  Service
	renderer Renderer
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, renderer Renderer) *Handler {
	return &Handler{log: log, service: service, renderer: renderer}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.home"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		// Главная должна открываться и без списка тарифов.
		log.Error("failed to load plans", sl.Err(err))
	}
	if err := h.renderer.Render(w, http.StatusOK, "home.html", map[string]any{"Plans": plans}); err != nil {
		log.Error("failed to render page", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
