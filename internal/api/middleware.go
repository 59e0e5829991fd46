/**
 * @description
 * Authentication middleware for the finance service. The only HTTP surface
 * here is internal (batch trigger and back-office queries), protected by the
 * shared internal API key the services exchange.
 */
package api

import "net/http"

// InternalAuthMiddleware rejects requests that do not carry the shared
// internal API key.
func InternalAuthMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || r.Header.Get("X-Internal-Api-Key") != apiKey {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
