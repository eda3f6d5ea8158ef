package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cards-app/backend/auth"
	"cards-app/backend/database"
	"cards-app/backend/middleware"
	"cards-app/backend/respond"
)

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(userID uint, ttl time.Duration) (string, error)
	Verify(token string) (uint, error)
}

// Handler carries the process-wide dependencies every route needs.
type Handler struct {
	Store       *database.Store
	Hasher      auth.Hasher
	Tokens      TokenIssuer
	MaxBodySize int64
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if h.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodySize)
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// requireAdmin writes the 401 itself and returns false unless the token's
// user exists and is an admin.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "You must be an admin")
		return false
	}
	isAdmin, err := h.Store.IsAdmin(r.Context(), userID)
	if err != nil {
		slog.Error("admin check failed", "source", "auth", "user_id", userID, "error", err.Error(), "request_id", middleware.RequestID(r.Context()))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	if !isAdmin {
		slog.Warn("non-admin denied", "source", "auth", "user_id", userID, "path", r.URL.Path, "request_id", middleware.RequestID(r.Context()))
		respond.Error(w, http.StatusUnauthorized, "You must be an admin")
		return false
	}
	return true
}
