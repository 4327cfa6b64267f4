// Package cookies выставляет и сбрасывает cookie сессии.
package cookies

import (
	"net/http"
	"time"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
)

// Set записывает токен сессии в HttpOnly cookie.
func Set(w http.ResponseWriter, cfg config.Session, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   !cfg.CookieInsecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Expire удаляет cookie сессии у клиента.
func Expire(w http.ResponseWriter, cfg config.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !cfg.CookieInsecure,
		SameSite: http.SameSiteLaxMode,
	})
}
