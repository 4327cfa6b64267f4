package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/lib/password"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := models.RegisterRequest{Username: "reader", Email: "reader@example.com", Password: "Str0ng-pass"}

	tests := []struct {
		name       string
		body       any
		mockSetup  func(m *ServiceMock)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return("uid-1", nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       "{",
			mockSetup:  func(m *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "bad email",
			body:       models.RegisterRequest{Username: "reader", Email: "nope", Password: "x"},
			mockSetup:  func(m *ServiceMock) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field Email must be a valid email",
		},
		{
			name: "weak password",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).
					Return("", fmt.Errorf("auth.Register: %w: %w", services.ErrWeakPassword, password.ErrEntirelyDigit))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  password.ErrEntirelyDigit.Error(),
		},
		{
			name: "duplicate username",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return("", storage.ErrAlreadyExists)
			},
			wantStatus: http.StatusConflict,
			wantError:  "username or email already taken",
		},
		{
			name: "storage failure",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return("", errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.mockSetup(svc)

			var body []byte
			if s, ok := tt.body.(string); ok {
				body = []byte(s)
			} else {
				var err error
				body, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/account/register", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, "Error", resp["status"])
				assert.Equal(t, tt.wantError, resp["error"])
			} else {
				assert.Equal(t, "OK", resp["status"])
				assert.Equal(t, "uid-1", resp["data"].(map[string]any)["uid"])
			}
			svc.AssertExpectations(t)
		})
	}
}
