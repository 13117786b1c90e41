package middleware

import (
	"fmt"
	"net/http"
)

// StaticCache returns middleware that sets immutable caching headers for
// static assets. maxAgeSeconds controls the Cache-Control max-age.
func StaticCache(maxAgeSeconds int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAgeSeconds)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	}
}
