// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/scribestream/scribestream/internal/logging"
	"github.com/scribestream/scribestream/internal/models"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const claimsKey contextKey = "auth_claims"

// AnonymousUser is the identity assigned when authentication is disabled
// and the request names no user.
const AnonymousUser = "anonymous"

// Middleware returns HTTP middleware that resolves the request identity.
//
// With a JWT manager configured, a valid bearer token is required and its
// claims are stored on the request context. With manager nil authentication
// is disabled: the identity is taken from the X-User-ID header, falling back
// to AnonymousUser, which is the standalone single-author mode.
func Middleware(m *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				userID := r.Header.Get("X-User-ID")
				if userID == "" {
					userID = AnonymousUser
				}
				ctx := context.WithValue(r.Context(), claimsKey, &Claims{UserID: userID})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := m.ValidateToken(token)
			if err != nil {
				logging.Debug().Err(err).Msg("Token validation failed")
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header or, for
// WebSocket upgrades where headers are awkward to set, the token query
// parameter.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// UserFromContext returns the authenticated user id, or AnonymousUser when
// the request carried no identity.
func UserFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok && claims.UserID != "" {
		return claims.UserID
	}
	return AnonymousUser
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    "AUTHENTICATION_ERROR",
			Message: message,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
