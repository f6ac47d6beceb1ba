package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKey guards a handler with a static X-API-Key header check. An empty
// configured key disables the check.
func APIKey(key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key != "" {
			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid or missing API key"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
