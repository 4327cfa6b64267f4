package diagnose

import (
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

	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/web"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Diagnose(ctx context.Context, fixRequested bool) *models.Diagnosis {
	return m.Called(ctx, fixRequested).Get(0).(*models.Diagnosis)
}

func TestDiagnoseHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tpl, err := web.Load()
	require.NoError(t, err)

	report := &models.Diagnosis{
		EnvInfo:    map[string]string{"APP_ENV": "prod"},
		Migrations: &models.MigrationState{Version: 3, Latest: 3},
		Tables:     []models.TableInfo{{Name: "users", Columns: []models.ColumnInfo{{Name: "uid", Type: "uuid"}}}},
	}

	tests := []struct {
		name     string
		url      string
		headers  map[string]string
		fix      bool
		wantJSON bool
	}{
		{name: "ajax", url: "/admin/diagnose-db", headers: map[string]string{"X-Requested-With": "XMLHttpRequest"}, wantJSON: true},
		{name: "accept json", url: "/db-diagnose", headers: map[string]string{"Accept": "application/json"}, wantJSON: true},
		{name: "browser", url: "/admin/diagnose-db", headers: map[string]string{"Accept": "text/html"}},
		{name: "fix flag is passed through", url: "/admin/diagnose-db?fix=true",
			headers: map[string]string{"Accept": "application/json"}, fix: true, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Diagnose", mock.Anything, tt.fix).Return(report)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			New(logger, svc, tpl).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			if tt.wantJSON {
				var got models.Diagnosis
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, "users", got.Tables[0].Name)
				assert.Equal(t, uint(3), got.Migrations.Version)
			} else {
				assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
				assert.Contains(t, rr.Body.String(), "<h3>users</h3>")
			}
			svc.AssertExpectations(t)
		})
	}
}
