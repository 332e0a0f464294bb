package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderdesk/internal/auth"
	intconfig "orderdesk/internal/config"
	router "orderdesk/internal/http"
	"orderdesk/internal/http/handlers"
	"orderdesk/internal/http/middleware"
	"orderdesk/internal/ratelimit"
	"orderdesk/internal/repositories"
	"orderdesk/internal/services"
	"orderdesk/internal/storage"
	"orderdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(env.LogJSON)
	slog.SetDefault(logger)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.ConnectDB(ctx, env)
	if err != nil {
		return err
	}
	defer db.Close()

	if env.DBAutoMigrate {
		if err := intconfig.Migrate(ctx, db); err != nil {
			return err
		}
	}

	images, uploadDir, err := buildImageStore(ctx, env)
	if err != nil {
		return err
	}

	limiter, closeLimiter := buildLoginLimiter(env)
	defer closeLimiter()

	issuer, err := auth.NewIssuer(env.JWTSecret, env.TokenTTL)
	if err != nil {
		return err
	}

	r := router.NewRouter(wire(env, db, issuer, images, uploadDir, limiter, logger))

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", env.AppAddr), slog.String("storage", env.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}

func wire(env intconfig.Env, db *sql.DB, issuer *auth.Issuer, images storage.ImageStore, uploadDir string, limiter ratelimit.Limiter, logger *slog.Logger) router.Deps {
	users := repositories.UserRepository{DB: db}
	orders := repositories.OrderRepository{DB: db}

	return router.Deps{
		Logger:       logger,
		FrontendURL:  env.FrontendURL,
		UploadDir:    uploadDir,
		LoginLimiter: limiter,
		Gate: middleware.Gate{
			Issuer:        issuer,
			Principals:    users,
			RejectBlocked: env.AuthRejectBlocked,
		},
		Auth: handlers.AuthHandler{
			Auth:   services.AuthService{Users: users, Issuer: issuer},
			Cookie: handlers.CookieConfig{Secure: env.CookieSecure, TTL: issuer.TTL()},
		},
		Users: handlers.UserHandler{
			Users: services.UserService{Users: users, MaxPage: env.MaxPageSize},
		},
		Orders: handlers.OrderHandler{
			Orders:   services.OrderService{Orders: orders, Images: images, MaxPage: env.MaxPageSize},
			Invoices: services.InvoiceService{Company: env.InvoiceCompany},
		},
		System: &handlers.SystemHandler{DB: db},
	}
}

// buildImageStore returns the configured backend and, for local storage, the
// directory to serve under /uploads.
func buildImageStore(ctx context.Context, env intconfig.Env) (storage.ImageStore, string, error) {
	if env.StorageDriver == "s3" {
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:     env.S3Bucket,
			Region:     env.S3Region,
			AccessKey:  env.S3AccessKey,
			SecretKey:  env.S3SecretKey,
			Endpoint:   env.S3Endpoint,
			PresignTTL: env.S3PresignTTL,
		})
		return s, "", err
	}
	s, err := storage.NewLocalStore(env.UploadDir, "/uploads")
	if err != nil {
		return nil, "", err
	}
	return s, env.UploadDir, nil
}

func buildLoginLimiter(env intconfig.Env) (ratelimit.Limiter, func()) {
	if env.RedisAddr == "" {
		return ratelimit.NewInMemory(env.LoginRateLimit, time.Minute), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: env.RedisAddr})
	return ratelimit.NewRedis(client, env.LoginRateLimit, time.Minute), func() { _ = client.Close() }
}
