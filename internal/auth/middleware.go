package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey int

const adminKey contextKey = 0

// RequireAdmin guards mutating endpoints. It expects a bearer token whose
// claims assert isAdmin; the admin username is placed on the request context.
func RequireAdmin(ts *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, "Missing token", http.StatusUnauthorized)
				return
			}

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				writeJSONError(w, "Missing token", http.StatusUnauthorized)
				return
			}

			claims, err := ts.Validate(tokenStr)
			if err != nil {
				writeJSONError(w, "Token invalid", http.StatusUnauthorized)
				return
			}
			if !claims.IsAdmin {
				writeJSONError(w, "Not admin", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromContext returns the authenticated admin username, or "admin"
// when the request did not pass through RequireAdmin.
func AdminFromContext(ctx context.Context) string {
	username, ok := ctx.Value(adminKey).(string)
	if !ok || username == "" {
		return "admin"
	}
	return username
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
