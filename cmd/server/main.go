package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/app"
	"github.com/nekogravitycat/court-reservation/internal/config"
	"github.com/nekogravitycat/court-reservation/internal/db"
	"github.com/nekogravitycat/court-reservation/internal/pkg/logger"
	"github.com/nekogravitycat/court-reservation/internal/ratelimit"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Dir:         cfg.LogDir,
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		zlog.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			zlog.Fatal("failed to migrate db", zap.Error(err))
		}
		zlog.Info("database schema applied")
	}

	policy := ratelimit.Policy{Limit: cfg.BookingRateLimit, Window: cfg.BookingRateWindow}
	var limiter ratelimit.Limiter
	switch cfg.RateLimitBackend {
	case config.RateLimitRedis:
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		limiter = ratelimit.NewRedis(client, policy, "court-reservation:ratelimit:")
	default:
		limiter = ratelimit.NewMemory(policy)
	}
	zlog.Info("booking rate limit",
		zap.String("backend", cfg.RateLimitBackend),
		zap.Int("limit", policy.Limit),
		zap.Duration("window", policy.Window),
	)

	container, err := app.NewContainer(app.Config{
		IsProduction:  cfg.IsProduction,
		ProdOrigins:   cfg.ProdOrigins,
		DBPool:        pool,
		Logger:        zlog,
		JWTSecret:     cfg.JWTSecret,
		JWTTTL:        cfg.JWTAccessTokenTTL,
		BcryptCost:    cfg.BcryptCost,
		EncryptionKey: cfg.EncryptionKey,
		HourlyRate:    cfg.HourlyRate,
		Limiter:       limiter,
		UploadDir:     cfg.UploadDir,

		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		zlog.Fatal("failed to init app", zap.Error(err))
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		zlog.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zlog.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited gracefully")
}
