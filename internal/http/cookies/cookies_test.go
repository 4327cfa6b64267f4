package cookies

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
)

func TestSetAndExpire(t *testing.T) {
	cfg := config.Session{CookieName: "sessionid"}

	w := httptest.NewRecorder()
	Set(w, cfg, "tok", time.Now().Add(time.Hour))
	got := w.Result().Cookies()
	require.Len(t, got, 1)
	assert.Equal(t, "sessionid", got[0].Name)
	assert.Equal(t, "tok", got[0].Value)
	assert.True(t, got[0].HttpOnly)
	assert.True(t, got[0].Secure)

	w = httptest.NewRecorder()
	Expire(w, config.Session{CookieName: "sessionid", CookieInsecure: true})
	got = w.Result().Cookies()
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Value)
	assert.Equal(t, -1, got[0].MaxAge)
	assert.False(t, got[0].Secure)
}
