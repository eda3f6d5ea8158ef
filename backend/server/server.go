package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cards-app/backend/auth"
	"cards-app/backend/config"
	"cards-app/backend/database"
	"cards-app/backend/handlers"
	"cards-app/backend/middleware"

	"gorm.io/gorm"
)

// Routes builds the HTTP surface. The audit log API is only mounted when
// log persistence is on.
func Routes(cfg config.Config, h *handlers.Handler, authLimiter *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", handlers.Index())
	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /auth/register/{$}", authLimiter.LimitFunc(h.Register))
	mux.HandleFunc("POST /auth/login/{$}", authLimiter.LimitFunc(h.Login))

	mux.HandleFunc("GET /cards/{$}", middleware.RequireToken(h.Tokens, h.ListCards))

	if cfg.Logs.Persist {
		mux.HandleFunc("GET /admin/api/logs", middleware.RequireToken(h.Tokens, h.GetLogs))
		mux.HandleFunc("GET /admin/api/logs/sources", middleware.RequireToken(h.Tokens, h.GetLogSources))
	}

	return middleware.AccessLog(middleware.SecurityHeaders(middleware.CORS(cfg.CORS.AllowedOrigins, mux)))
}

// NewHandler wires the store, hasher and token issuer for the routes.
func NewHandler(cfg config.Config, db *gorm.DB) (*handlers.Handler, error) {
	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}
	return &handlers.Handler{
		Store:       database.NewStore(db),
		Hasher:      auth.BcryptHasher{},
		Tokens:      tokens,
		MaxBodySize: cfg.HTTP.MaxBodySize,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func Run(ctx context.Context, cfg config.Config, db *gorm.DB) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	h, err := NewHandler(cfg, db)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit.Requests, cfg.AuthRateLimit.Window, cfg.AuthRateLimit.TrustProxy)
	defer limiter.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           Routes(cfg, h, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "source", "server", "listen", cfg.Listen, "tls", cfg.TLS.Enabled)
		if cfg.TLS.Enabled {
			errCh <- srv.ListenAndServeTLS(cfg.TLS.Cert, cfg.TLS.Key)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down", "source", "server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
