// Package remove реализует HTTP-обработчик удаления аккаунта.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/http/cookies"
	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/http/response"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
)

// Service описывает удаление аккаунта.
type Service interface {
	Delete(ctx context.Context, userUID string) error
}

// Handler обрабатывает удаление аккаунта.
type Handler struct {
	log     *slog.Logger
	service Service
	session config.Session
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, session config.Session) *Handler {
	return &Handler{log: log, service: service, session: session}
}

// ServeHTTP godoc
// @Summary Удаление аккаунта
// @Description Отменяет подписку у платежного провайдера и удаляет пользователя вместе с подпиской, сессиями и статьями.
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Требуется вход"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/account [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	session, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		log.Error("session missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), session.UserUID); err != nil {
		log.Error("failed to delete account", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	cookies.Expire(w, h.session)
	log.Info("account deleted", slog.String("uid", session.UserUID))
	render.JSON(w, r, response.OK())
}
