package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Makuqty/GridLock/internal/api/apierr"
	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/auth"
)

type contextKey string

const usernameContextKey contextKey = "username"

// Auth creates authentication middleware that requires a valid bearer token
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			username, err := authService.VerifyToken(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), usernameContextKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUsername returns the authenticated username from the request context
func GetUsername(ctx context.Context) model.Username {
	username, _ := ctx.Value(usernameContextKey).(model.Username)
	return username
}

// MustGetUsername returns the authenticated username or panics
func MustGetUsername(ctx context.Context) model.Username {
	username := GetUsername(ctx)
	if username == "" {
		panic("no username in context - auth middleware not applied?")
	}
	return username
}
