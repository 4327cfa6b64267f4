package create

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
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, writerUID string, in models.ArticleInput) (*models.Article, error) {
	args := m.Called(ctx, writerUID, in)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := models.ArticleInput{Title: "Why rates stay high", Content: "# Heading\n\nBody", IsPremium: true}

	tests := []struct {
		name       string
		body       models.ArticleInput
		mockSetup  func(m *MockService)
		wantStatus int
		wantError  string
	}{
		{
			name: "published",
			body: valid,
			mockSetup: func(m *MockService) {
				m.On("Create", mock.Anything, "w1", valid).
					Return(&models.Article{ID: 11, WriterUID: "w1", Title: valid.Title, IsPremium: true}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short title",
			body:       models.ArticleInput{Title: "ab", Content: "text"},
			mockSetup:  func(m *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field Title must be at least 3 characters",
		},
		{
			name:       "empty content",
			body:       models.ArticleInput{Title: "Title"},
			mockSetup:  func(m *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field Content is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.mockSetup(svc)

			body, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/writer/articles", bytes.NewReader(body))
			req = req.WithContext(middlewarectx.WithSession(req.Context(), &models.Session{UserUID: "w1", Role: models.RoleWriter}))
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			} else {
				assert.Equal(t, float64(11), resp["data"].(map[string]any)["id"])
			}
			svc.AssertExpectations(t)
		})
	}
}
