package read

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, userUID string, id int64) (*models.Article, error) {
	args := m.Called(ctx, userUID, id)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		id         string
		setupMock  func(m *MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "ok",
			id:   "5",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "u1", int64(5)).
					Return(&models.Article{ID: 5, Title: "T", HTML: "<p>x</p>"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad id",
			id:         "five",
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"invalid id"}`,
		},
		{
			name: "premium article for standard subscriber",
			id:   "6",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "u1", int64(6)).Return(nil, services.ErrPremiumRequired)
			},
			wantStatus: http.StatusForbidden,
			wantBody:   `{"status":"Error","error":"premium subscription required"}`,
		},
		{
			name: "missing",
			id:   "7",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "u1", int64(7)).Return(nil, storage.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name: "storage failure",
			id:   "8",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "u1", int64(8)).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/articles/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithSession(ctx, &models.Session{UserUID: "u1"}))
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			} else {
				var resp struct {
					Data models.Article `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "<p>x</p>", resp.Data.HTML)
			}
			svc.AssertExpectations(t)
		})
	}
}
