package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

func TestRender_Home(t *testing.T) {
	tpl, err := Load()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = tpl.Render(rr, http.StatusOK, "home.html", map[string]any{
		"Plans": []*models.PlanChoice{{Name: "Premium", Cost: 999, Description1: "<b>All</b> articles"}},
	})
	require.NoError(t, err)

	body := rr.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, body, "Premium &middot; $9.99/month")
	assert.Contains(t, body, "&lt;b&gt;All&lt;/b&gt; articles")
}

func TestRender_Diagnose(t *testing.T) {
	tpl, err := Load()
	require.NoError(t, err)

	def := "now()"
	rr := httptest.NewRecorder()
	err = tpl.Render(rr, http.StatusOK, "diagnose.html", &models.Diagnosis{
		EnvInfo:    map[string]string{"APP_ENV": "prod"},
		Migrations: &models.MigrationState{Version: 3, Latest: 3},
		Tables: []models.TableInfo{{Name: "sessions", Columns: []models.ColumnInfo{
			{Name: "created_at", Type: "timestamp with time zone", Default: &def},
		}}},
		Error: "connection refused",
	})
	require.NoError(t, err)

	body := rr.Body.String()
	assert.Contains(t, body, "<h3>sessions</h3>")
	assert.Contains(t, body, "now()")
	assert.Contains(t, body, `<p class="error">connection refused</p>`)
}

func TestRender_UnknownPage(t *testing.T) {
	tpl, err := Load()
	require.NoError(t, err)
	assert.Error(t, tpl.Render(httptest.NewRecorder(), http.StatusOK, "missing.html", nil))
}
