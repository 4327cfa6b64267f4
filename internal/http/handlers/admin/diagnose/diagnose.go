// Package diagnose реализует страницу диагностики базы для администратора.
package diagnose

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/http/response"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// Service собирает отчет о состоянии базы.
type Service interface {
	Diagnose(ctx context.Context, fixRequested bool) *models.Diagnosis
}

// Renderer исполняет HTML-шаблон.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// Handler отдает отчет в JSON или HTML.
type Handler struct {
	log      *slog.Logger
	service  Service
	renderer Renderer
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, renderer Renderer) *Handler {
	return &Handler{log: log, service: service, renderer: renderer}
}

// ServeHTTP godoc
// @Summary Диагностика базы
// @Description Окружение, версия миграций и структура таблиц. JSON для XHR или Accept: application/json, иначе HTML. Схема не меняется: параметр fix только подсказывает команду миграции.
// @Tags Admin
// @Produce json,html
// @Security BearerAuth
// @Param fix query bool false "Показать, как исправить схему"
// @Success 200 {object} models.Diagnosis
// @Failure 401 {object} response.ErrorResponse "Требуется вход"
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Router /admin/diagnose-db [get]
// @Router /db-diagnose [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.diagnose"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	fix, _ := strconv.ParseBool(r.URL.Query().Get("fix"))
	report := h.service.Diagnose(r.Context(), fix)
	if report.Error != "" {
		log.Warn("diagnostics finished with errors", slog.String("error", report.Error))
	}

	middlewarectx.SetNoCache(w)
	if wantsJSON(r) {
		render.JSON(w, r, report)
		return
	}
	if err := h.renderer.Render(w, http.StatusOK, "diagnose.html", report); err != nil {
		log.Error("failed to render page", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
	}
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
