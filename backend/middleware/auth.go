package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"cards-app/backend/respond"
)

type contextKey int

const userIDKey contextKey = iota

var errMissingAuthHeader = errors.New("missing Authorization header")

// TokenVerifier recovers the user id from a bearer token.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// RequireToken rejects requests without a valid bearer token and stores the
// token subject in the request context.
func RequireToken(tokens TokenVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			slog.Warn("rejected request: missing bearer token", "source", "auth", "path", r.URL.Path, "request_id", RequestID(r.Context()))
			respond.Error(w, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			slog.Warn("rejected request: invalid token", "source", "auth", "path", r.URL.Path, "error", err.Error(), "request_id", RequestID(r.Context()))
			respond.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// UserID returns the authenticated user id placed by RequireToken.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingAuthHeader
	}
	return strings.TrimSpace(token), nil
}
