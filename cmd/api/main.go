package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"minilibrary/internal/assistant"
	"minilibrary/internal/auth"
	"minilibrary/internal/book"
	"minilibrary/internal/circulation"
	"minilibrary/internal/config"
	"minilibrary/internal/httpx"
	"minilibrary/internal/platform/gemini"
	"minilibrary/internal/platform/openlibrary"
	"minilibrary/internal/platform/postgres"
	"minilibrary/internal/review"
	"minilibrary/internal/stats"
	"minilibrary/internal/user"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("database connection OK", "dsn", postgres.RedactDSN(cfg.DatabaseDSN))

	userService := user.NewService(user.NewPostgresRepo(pool, cfg.DBTimeout), logger)
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userService, logger)

	metadata := openlibrary.NewClient(cfg.OpenLibraryUA, cfg.OpenLibraryRPS, 3)
	bookService := book.NewService(book.NewPostgresRepo(pool, cfg.DBTimeout), metadata)

	reviewService := review.NewService(review.NewPostgresRepo(pool, cfg.DBTimeout))

	circulationService, err := circulation.NewService(
		circulation.NewPostgresStore(pool, cfg.DBTimeout),
		circulation.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	statsService := stats.NewService(stats.NewSQLXRepoFromPool(pool, cfg.DBTimeout))

	var generator assistant.TextGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiRPS)
		if err != nil {
			return err
		}
		generator = client
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant features degrade to plain search")
	}
	assistantService := assistant.NewService(generator, bookService,
		assistant.NewPostgresRepo(pool, cfg.DBTimeout), logger)

	var roles httpx.RoleLookup
	if cfg.ResolveRoles {
		roles = userService
	}

	mux := newRouter(handlers{
		auth:        auth.NewHTTPHandler(authService),
		users:       user.NewHTTPHandler(userService),
		books:       book.NewHTTPHandler(bookService),
		reviews:     review.NewHTTPHandler(reviewService),
		circulation: circulation.NewHTTPHandler(circulationService),
		stats:       stats.NewHTTPHandler(statsService),
		assistant:   assistant.NewHTTPHandler(assistantService),
	}, httpx.AuthMiddleware(cfg.JWTSecret, roles), pool)

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)

	handler := httpx.Chain(mux,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		rateLimiter.Middleware,
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
