// Package logout реализует HTTP-обработчик выхода из аккаунта.
package logout

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/http/cookies"
	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/http/response"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
)

// Service описывает завершение сессии.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler обрабатывает выход.
type Handler struct {
	log     *slog.Logger
	service Service
	session config.Session
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, session config.Session) *Handler {
	return &Handler{
		log:     log,
		service: service,
		session: session,
	}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Удаляет сессию и cookie. Ответ не кешируется. Браузер перенаправляется на главную (303), API-клиент получает JSON.
// @Tags Account
// @Produce json
// @Success 200 {object} response.Response
// @Success 303 "Перенаправление на главную"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/account/logout [post]
// @Router /api/v1/account/logout [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	middlewarectx.SetNoCache(w)

	if token := middlewarectx.TokenFromRequest(r, h.session.CookieName); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			log.Error("failed to logout", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
	}
	cookies.Expire(w, h.session)
	log.Info("logged out")

	if isBrowser(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render.JSON(w, r, response.OK())
}

func isBrowser(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
