package paymentwebhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/contrarian-report/internal/paymentprovider"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) HandleWebhook(ctx context.Context, headers paymentprovider.WebhookHeaders, body []byte) error {
	return m.Called(ctx, headers, body).Error(0)
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	const body = `{"id":"WH-1","event_type":"BILLING.SUBSCRIPTION.CANCELLED","resource":{"id":"I-1"}}`

	tests := []struct {
		name       string
		mockErr    error
		wantStatus int
	}{
		{name: "processed", wantStatus: http.StatusOK},
		{name: "bad signature", mockErr: fmt.Errorf("subscription.HandleWebhook: %w", services.ErrInvalidWebhook),
			wantStatus: http.StatusBadRequest},
		{name: "storage failure asks for redelivery", mockErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(h paymentprovider.WebhookHeaders) bool {
				return h.TransmissionID == "tx-1" && h.AuthAlgo == "SHA256withRSA"
			}), []byte(body)).Return(tt.mockErr)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
			req.Header.Set("PAYPAL-TRANSMISSION-ID", "tx-1")
			req.Header.Set("PAYPAL-AUTH-ALGO", "SHA256withRSA")
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
