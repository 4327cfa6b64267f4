package middlewarectx

import "net/http"

// SetNoCache запрещает клиенту и прокси кешировать ответ.
func SetNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// NoCache выставляет заголовки SetNoCache для всех ответов.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetNoCache(w)
		next.ServeHTTP(w, r)
	})
}
