package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cards-app/backend/auth"
	"cards-app/backend/database"
	"cards-app/backend/middleware"
	"cards-app/backend/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-32-chars-long!!!"

var testHasher = auth.BcryptHasher{Cost: bcrypt.MinCost}

func setupHandler(t *testing.T) *Handler {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.CreateTables(db))

	tokens, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)

	return &Handler{
		Store:       database.NewStore(db),
		Hasher:      testHasher,
		Tokens:      tokens,
		MaxBodySize: 1024 * 1024,
	}
}

func seed(t *testing.T, h *Handler) {
	t.Helper()
	require.NoError(t, database.Seed(context.Background(), h.Store.DB(), testHasher, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)))
}

func countUsers(t *testing.T, h *Handler, email string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.Store.DB().Model(&models.User{}).Where("email = ?", email).Count(&n).Error)
	return n
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&out), rec.Body.String())
	return out
}

func tokenFor(t *testing.T, h *Handler, email, password string) string {
	t.Helper()
	rec := postJSON(h.Login, "/auth/login/", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[loginResponse](t, rec).Token
}

func getWithToken(h *Handler, handler http.HandlerFunc, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	middleware.RequireToken(h.Tokens, handler)(rec, req)
	return rec
}
