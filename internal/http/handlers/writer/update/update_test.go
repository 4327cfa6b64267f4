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

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, writerUID string, id int64, in models.ArticleInput) (*models.Article, error) {
	args := m.Called(ctx, writerUID, id, in)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	in := models.ArticleInput{Title: "Revised", Content: "new body"}

	tests := []struct {
		name       string
		id         string
		mockSetup  func(m *MockService)
		wantStatus int
	}{
		{
			name: "updated",
			id:   "4",
			mockSetup: func(m *MockService) {
				m.On("Update", mock.Anything, "w1", int64(4), in).Return(&models.Article{ID: 4, Title: "Revised"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "someone else's article",
			id:   "5",
			mockSetup: func(m *MockService) {
				m.On("Update", mock.Anything, "w1", int64(5), in).Return(nil, storage.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad id",
			id:         "x",
			mockSetup:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.mockSetup(svc)

			body, err := json.Marshal(in)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPut, "/api/v1/writer/articles/"+tt.id, bytes.NewReader(body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithSession(ctx, &models.Session{UserUID: "w1"}))
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
