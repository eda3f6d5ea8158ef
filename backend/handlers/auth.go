package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"cards-app/backend/auth"
	"cards-app/backend/database"
	"cards-app/backend/middleware"
	"cards-app/backend/models"
	"cards-app/backend/respond"
)

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID      uint    `json:"id"`
	Name    *string `json:"name"`
	Email   string  `json:"email"`
	IsAdmin bool    `json:"is_admin"`
}

type loginResponse struct {
	Email   string `json:"email"`
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestID(r.Context())

	var in registerRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		slog.Warn("registration failed: bad body", "source", "auth", "error", err.Error(), "request_id", reqID)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Email == "" || in.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hashed, err := h.Hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		respond.Error(w, http.StatusBadRequest, "Password must be at most 72 bytes")
		return
	}
	if err != nil {
		slog.Error("registration failed: hash error", "source", "auth", "error", err.Error(), "request_id", reqID)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{Email: in.Email, Password: hashed, Name: in.Name}
	if err := h.Store.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			slog.Warn("registration failed: email exists", "source", "auth", "email", in.Email, "request_id", reqID)
			respond.Error(w, http.StatusConflict, "Email address already in use")
			return
		}
		slog.Error("registration failed: db error", "source", "auth", "error", err.Error(), "request_id", reqID)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("user registered", "source", "auth", "user_id", user.ID, "email", user.Email, "request_id", reqID)
	respond.JSON(w, http.StatusCreated, toUserResponse(&user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestID(r.Context())

	var in loginRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		slog.Warn("login failed: bad body", "source", "auth", "error", err.Error(), "request_id", reqID)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Store.FindUserByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			slog.Warn("login failed: user not found", "source", "auth", "email", in.Email, "request_id", reqID)
			respond.Error(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.Error("login failed: db error", "source", "auth", "error", err.Error(), "request_id", reqID)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.Hasher.Check(in.Password, user.Password) {
		slog.Warn("login failed: invalid password", "source", "auth", "email", in.Email, "request_id", reqID)
		respond.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.Tokens.Issue(user.ID, auth.TokenTTL)
	if err != nil {
		slog.Error("login failed: token error", "source", "auth", "error", err.Error(), "request_id", reqID)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("user logged in", "source", "auth", "user_id", user.ID, "email", user.Email, "request_id", reqID)
	respond.JSON(w, http.StatusOK, loginResponse{Email: user.Email, Token: token, IsAdmin: user.IsAdmin})
}
