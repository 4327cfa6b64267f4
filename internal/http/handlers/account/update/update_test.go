package update

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) UpdateProfile(ctx context.Context, userUID string, req models.ProfileRequest) (*models.User, error) {
	args := m.Called(ctx, userUID, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdateHandler(t *testing.T) {
	valid := models.ProfileRequest{Username: "newname", Email: "new@example.com", FirstName: "Ann"}

	tests := []struct {
		name       string
		body       any
		mockSetup  func(m *ServiceMock)
		wantStatus int
		wantError  string
	}{
		{
			name: "updated",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("UpdateProfile", mock.Anything, "u1", valid).
					Return(&models.User{UID: "u1", Username: "newname", Email: "new@example.com"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "short username",
			body:       models.ProfileRequest{Username: "ab", Email: "new@example.com"},
			mockSetup:  func(m *ServiceMock) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field Username must be at least 3 characters",
		},
		{
			name: "email taken",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("UpdateProfile", mock.Anything, "u1", valid).Return(nil, storage.ErrAlreadyExists)
			},
			wantStatus: http.StatusConflict,
			wantError:  "username or email already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.mockSetup(svc)

			body, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPut, "/api/v1/account/profile", bytes.NewReader(body))
			req = req.WithContext(middlewarectx.WithSession(req.Context(), &models.Session{UserUID: "u1"}))
			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			svc.AssertExpectations(t)
		})
	}
}
