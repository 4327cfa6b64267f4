// Package paymentwebhook принимает события платежного провайдера.
//
// Подпись проверяется самим провайдером через verify-webhook-signature, повторно
// доставленное событие подтверждается без повторной обработки.
package paymentwebhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contrarian-report/internal/http/response"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/paymentprovider"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
)

const maxBodySize = 1 << 20

// Service обрабатывает событие провайдера.
type Service interface {
	HandleWebhook(ctx context.Context, headers paymentprovider.WebhookHeaders, body []byte) error
}

// Handler принимает вебхуки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вебхук платежного провайдера
// @Description Принимает события BILLING.SUBSCRIPTION.* и PAYMENT.SALE.COMPLETED. Подпись сверяется у провайдера.
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки, провайдер повторит доставку"
// @Router /api/v1/payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer r.Body.Close()

	headers := paymentprovider.HeadersFrom(r.Header)
	if err := h.service.HandleWebhook(r.Context(), headers, body); err != nil {
		if errors.Is(err, services.ErrInvalidWebhook) {
			log.Warn("webhook rejected", slog.String("transmission_id", headers.TransmissionID), sl.Err(err))
		} else {
			log.Error("failed to process webhook event", sl.Err(err))
		}
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("webhook processed successfully", slog.String("transmission_id", headers.TransmissionID))
	render.JSON(w, r, response.OK())
}
