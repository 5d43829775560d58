// Command notesafe-server starts the personal-data HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/akorchev/notesafe/internal/config"
	"github.com/akorchev/notesafe/internal/limiter"
	"github.com/akorchev/notesafe/internal/migrate"
	"github.com/akorchev/notesafe/internal/repository/postgres"
	"github.com/akorchev/notesafe/internal/server/httpapi"
	"github.com/akorchev/notesafe/internal/service"
	"github.com/akorchev/notesafe/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	env := config.FromEnv()

	addr := flag.String("addr", env.Addr, "listen address")
	dsn := flag.String("dsn", env.DSN, "PostgreSQL DSN")
	redisURL := flag.String("redis", env.RedisURL, "Redis URL for the session store")
	sessionTTL := flag.Duration("session-ttl", env.SessionTTL, "session lifetime")
	recheckRename := flag.Bool("recheck-rename", false, "refuse renames that collide within the owner scope")
	secureCookies := flag.Bool("secure-cookies", true, "mark the session cookie Secure")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, *dsn); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, *dsn)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	sessions, err := session.NewRedisStore(*redisURL, *sessionTTL)
	if err != nil {
		logger.Fatal("session.NewRedisStore", zap.Error(err))
	}
	defer func() { _ = sessions.Close() }()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	stores := service.Stores{
		Notes:     postgres.NewNoteRepo(db),
		Todos:     postgres.NewTodoRepo(db),
		Passwords: postgres.NewPasswordRepo(db),
	}

	lim := limiter.NewPG(db.Pool, 15*time.Minute, 5, 15*time.Minute)

	// Services
	authSvc := service.NewAuthService(userRepo, sessions, lim, logger)
	resources := service.NewResources(stores, service.Options{RecheckRename: *recheckRename}, logger)

	handler := httpapi.NewRouter(httpapi.Deps{
		Auth:        httpapi.NewAuthHandler(authSvc, *secureCookies),
		Resources:   resources,
		Sessions:    sessions,
		Logger:      logger,
		CORSOrigins: env.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
