package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/lanceraa/api/internal/models"
	pkghttp "github.com/lanceraa/api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// ClaimsContextKey is the key for storing token claims in context
	ClaimsContextKey contextKey = "claims"
)

// Authenticate validates the bearer token and injects its claims into the
// request context
func Authenticate(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "Not authenticated")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithClaims stores claims in ctx
func WithClaims(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext extracts token claims stored by Authenticate
func ClaimsFromContext(ctx context.Context) *models.TokenClaims {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
