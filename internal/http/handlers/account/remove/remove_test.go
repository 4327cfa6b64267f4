package remove

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Delete(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		mockErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "deleted", wantStatus: http.StatusOK, wantBody: `{"status":"OK"}`},
		{name: "storage failure", mockErr: errors.New("db down"), wantStatus: http.StatusInternalServerError,
			wantBody: `{"status":"Error","error":"internal error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Delete", mock.Anything, "u1").Return(tt.mockErr)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/account", nil)
			req = req.WithContext(middlewarectx.WithSession(req.Context(), &models.Session{UserUID: "u1"}))
			rr := httptest.NewRecorder()
			New(logger, svc, config.Session{CookieName: "sessionid"}).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
