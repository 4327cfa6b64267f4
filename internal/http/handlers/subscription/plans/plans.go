// Package plans реализует HTTP-обработчик страницы выбора тарифа.
package plans

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

// Service возвращает тарифы, доступные пользователю без подписки.
type Service interface {
	SubscribePage(ctx context.Context, userUID string) ([]*models.PlanChoice, error)
}

// Handler отдает список тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тарифы
// @Description Активные тарифы для оформления подписки. Если подписка уже есть, возвращается 409.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.PlanChoice}
// @Failure 401 {object} response.ErrorResponse "Требуется вход"
// @Failure 409 {object} response.ErrorResponse "Подписка уже оформлена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/client/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.plans"

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

	plans, err := h.service.SubscribePage(r.Context(), session.UserUID)
	if err != nil {
		status, resp := response.FromError(err)
		if status == http.StatusInternalServerError {
			log.Error("failed to list plans", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(plans))
}
