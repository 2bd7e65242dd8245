// Package auth provides authentication middleware and API key management.
package auth

import (
	"context"
	"net/http"

	"github.com/roeezolantz/errdex/internal/storage"
)

// Context key type for avoiding collisions
type contextKey string

const apiKeyContextKey contextKey = "apiKey"

// GetAPIKeyFromContext retrieves the API key info from context.
func GetAPIKeyFromContext(ctx context.Context) *storage.APIKey {
	if key, ok := ctx.Value(apiKeyContextKey).(*storage.APIKey); ok {
		return key
	}
	return nil
}

// GetOwnerIDFromContext retrieves the owner ID from context.
func GetOwnerIDFromContext(ctx context.Context) string {
	if key := GetAPIKeyFromContext(ctx); key != nil {
		return key.ID
	}
	return ""
}

// bearerToken extracts a key from the X-API-Key or Authorization header.
func bearerToken(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}

// Middleware returns an HTTP middleware that validates API keys.
func Middleware(store storage.APIKeyStore, writeError func(w http.ResponseWriter, status int, code, message string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := bearerToken(r)
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key required")
				return
			}

			key, err := store.ValidateAPIKey(r.Context(), apiKey)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware validates API keys when present but lets anonymous
// requests through.
func OptionalMiddleware(store storage.APIKeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey := bearerToken(r); apiKey != "" {
				key, err := store.ValidateAPIKey(r.Context(), apiKey)
				if err == nil && key != nil {
					ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
