// Package browse реализует HTTP-обработчик ленты статей читателя.
package browse

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/http/response"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// Service возвращает ленту статей по уровню подписки.
type Service interface {
	Browse(ctx context.Context, userUID string) (*models.ArticleFeed, error)
}

// Handler отдает ленту статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Лента статей
// @Description Премиальная подписка видит все статьи, стандартная только обычные. Без активной подписки лента пуста.
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.ArticleFeed}
// @Failure 401 {object} response.ErrorResponse "Требуется вход"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/articles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.articles.browse"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	session, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		log.Error("session not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	feed, err := h.service.Browse(r.Context(), session.UserUID)
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Debug("feed built", slog.Int("count", len(feed.Articles)), slog.String("plan", feed.SubscriptionPlan))
	render.JSON(w, r, response.StatusOKWithData(feed))
}
