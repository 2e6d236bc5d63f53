// Package app builds the dependency graph and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"accountly/internal/cache"
	"accountly/internal/config"
	"accountly/internal/database"
	"accountly/internal/jwt"
	"accountly/internal/notify"
	"accountly/internal/repository"
	"accountly/internal/service"
	"accountly/internal/session"
)

const shutdownTimeout = 10 * time.Second

// Run starts the server and blocks until SIGINT or SIGTERM, then drains in-flight requests.
func Run(cfg *config.Config, logger *slog.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Verification codes need Redis; without it the app runs with verification disabled.
	var codes cache.Cache
	if cfg.RedisURL != "" {
		codes, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			logger.Warn("failed to connect to Redis, phone verification disabled", "error", err)
			codes = nil
		} else {
			logger.Info("connected to Redis")
			defer codes.Close()
		}
	} else {
		logger.Warn("REDIS_URL not set, phone verification disabled")
	}

	userRepo := repository.NewUserRepository(db)

	sessionTokens, err := jwt.NewJWTService(cfg.SecretKey, jwt.AudienceSession, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to create session token service: %w", err)
	}
	resetTokens, err := jwt.NewJWTService(cfg.SecretKey, jwt.AudiencePasswordReset, cfg.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create reset token service: %w", err)
	}

	authService := service.NewAuthService(
		userRepo,
		resetTokens,
		notify.NewSMSSender(cfg.Twilio, logger),
		notify.NewEmailSender(cfg.Mailgun, logger),
		codes,
		logger,
	)
	sessions := session.NewManager(sessionTokens, authService, cfg.CookieSecure, logger)

	router, err := NewRouter(Deps{
		AuthService: authService,
		Sessions:    sessions,
		BaseURL:     cfg.BaseURL,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
