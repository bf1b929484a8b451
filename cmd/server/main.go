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

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/config"
	"github.com/GoPolymarket/fusiongate/internal/handler"
	"github.com/GoPolymarket/fusiongate/internal/middleware"
	"github.com/GoPolymarket/fusiongate/internal/pkg/logger"
	"github.com/GoPolymarket/fusiongate/internal/repository"
	"github.com/GoPolymarket/fusiongate/internal/service"
	"github.com/GoPolymarket/fusiongate/internal/signer"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	// 2. Initialize Persistence
	// Secrets and idempotency (Redis > Memory)
	memory := service.NewMemoryStore()
	var secrets service.SecretStore = memory
	var idempotencyStore middleware.IdempotencyStore = middleware.NewInMemIdempotencyStore(
		time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second)
	var redisClient *repository.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
			secrets = repository.NewRedisSecretStore(redisClient, time.Duration(cfg.Redis.SecretTTLHours)*time.Hour)
			idempotencyStore = repository.NewRedisIdempotencyStore(redisClient,
				time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second)
		} else {
			logger.Error("Failed to connect to Redis, falling back to memory", "error", err)
		}
	}

	// Prepared orders (Postgres > Memory)
	var orders service.OrderRepo = memory
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			repo, err := repository.NewPostgresOrderRepo(db)
			if err != nil {
				log.Fatalf("Failed to initialize order repository: %v", err)
			}
			logger.Info("Connected to PostgreSQL")
			orders = repo
		} else {
			logger.Error("Failed to connect to DB, orders will be kept in memory", "error", err)
		}
	}

	// 3. Initialize Core Services
	opts := contractVerifiers(cfg)
	orderSvc := service.NewOrderService(cfg, secrets, orders, opts...)

	// 4. Setup Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "fusiongate"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	v1.Use(middleware.IdempotencyMiddleware(idempotencyStore))
	handler.NewOrderHandler(orderSvc).Register(v1.Group("/orders"))

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("fusiongate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exiting")
}

// contractVerifiers enables EIP-1271 checks on every chain with an RPC endpoint.
func contractVerifiers(cfg *config.Config) []service.Option {
	var opts []service.Option
	for key, url := range cfg.Chain.RPCURLs {
		id, err := chain.ParseNetwork(key)
		if err != nil || url == "" {
			logger.Warn("Ignoring RPC endpoint", "chain", key, "error", err)
			continue
		}
		v := signer.NewContractVerifier(url,
			time.Duration(cfg.Chain.EIP1271CacheSeconds)*time.Second,
			time.Duration(cfg.Chain.EIP1271TimeoutMs)*time.Millisecond,
			cfg.Chain.EIP1271Retries,
		)
		opts = append(opts, service.WithContractVerifier(id, v))
	}
	return opts
}
