package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/limtzeyng/HERizon/common/id"
	"github.com/limtzeyng/HERizon/common/logger"
	"github.com/limtzeyng/HERizon/common/otel"
	"github.com/limtzeyng/HERizon/core/config"
	"github.com/limtzeyng/HERizon/internal/http/middleware"
	httprouter "github.com/limtzeyng/HERizon/internal/http/router"
	"github.com/limtzeyng/HERizon/internal/queue"
	"github.com/limtzeyng/HERizon/internal/service"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "herizon starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	mirror, err := setupMirror(ctx, cfg.Mirror)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up event mirror", "error", err)
		os.Exit(1)
	}
	if mirror != nil {
		defer mirror.Close()
	}

	services := service.NewServices(service.ServicesConfig{
		Delivery: cfg.Delivery,
		Mirror:   mirror,
	})
	slog.InfoContext(ctx, "delivery engine ready",
		"queue_capacity", cfg.Delivery.QueueCapacity,
		"response_log_capacity", cfg.Delivery.ResponseLogCapacity)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// setupMirror connects the redis stream mirror. Returns nil when disabled.
func setupMirror(ctx context.Context, cfg config.MirrorConfig) (queue.Mirror, error) {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "event mirror disabled (no REDIS_URL configured)")
		return nil, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.RedisStream)

	return queue.NewRedisMirror(redisClient, cfg.RedisStream, cfg.MaxLen, nil), nil
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled() {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Limiter: limiter,
	})

	return router
}

const banner = `
 _   _ _____ ____  _
| | | | ____|  _ \(_)_______  _ __
| |_| |  _| | |_) | |_  / _ \| '_ \
|  _  | |___|  _ <| |/ / (_) | | | |
|_| |_|_____|_| \_\_/___\___/|_| |_|
`
