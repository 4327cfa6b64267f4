// Package list реализует HTTP-обработчик списка статей автора.
package list

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

// Service возвращает статьи автора.
type Service interface {
	ListOwn(ctx context.Context, writerUID string) ([]*models.Article, error)
}

// Handler отдает статьи текущего автора.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои статьи
// @Tags Writer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Article}
// @Failure 403 {object} response.ErrorResponse "Только для авторов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/writer/articles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.writer.list"

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

	articles, err := h.service.ListOwn(r.Context(), session.UserUID)
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	render.JSON(w, r, response.StatusOKWithData(articles))
}
