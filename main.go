package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gogotex/admin-service/handlers"
	"github.com/gogotex/admin-service/internal/config"
	"github.com/gogotex/admin-service/internal/database"
	"github.com/gogotex/admin-service/internal/linking"
	"github.com/gogotex/admin-service/internal/models"
	"github.com/gogotex/admin-service/internal/oidc"
	"github.com/gogotex/admin-service/internal/passwords"
	producthandler "github.com/gogotex/admin-service/internal/product/handler"
	"github.com/gogotex/admin-service/internal/product/repository"
	"github.com/gogotex/admin-service/internal/sessions"
	"github.com/gogotex/admin-service/internal/users"
	"github.com/gogotex/admin-service/pkg/logger"
	"github.com/gogotex/admin-service/pkg/metrics"
	"github.com/gogotex/admin-service/pkg/middleware"
)

func main() {
	// LOG_LEVEL is read again from config below; this covers config errors
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.UseProduction(cfg.Server.IsProduction())
	logger.Infof("config loaded: db=%s redis=%v google=%v", cfg.Database.Driver, cfg.Redis.Addr() != "", cfg.Google.Enabled())
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, 10*time.Second)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis: %s", addr)
		}
		defer func() { _ = rdb.Close() }()
	}

	accounts := users.NewService(users.NewGORMRepository(db), passwords.NewHasher(cfg.Password))
	products := repository.NewGORMRepo(db)
	manager := sessions.NewManager(cfg.Session, sessions.NewBlacklist(rdb))

	var attempts sessions.Repository = sessions.NewMemoryRepository()
	if rdb != nil {
		attempts = sessions.NewRedisRepository(rdb, "oauth_attempt:")
	} else {
		logger.Warn("Redis not configured: sign-in attempts are kept in memory and sign-out does not revoke tokens")
	}

	var linker handlers.Linker
	if cfg.Google.Enabled() {
		dctx, cancel := context.WithTimeout(ctx, cfg.Google.Timeout)
		provider, err := oidc.NewGoogleProvider(dctx, cfg.Google)
		cancel()
		if err != nil {
			logger.Warnf("Google sign-in disabled: %v", err)
		} else {
			linker = linking.NewService(provider, sessions.NewService(attempts, cfg.Session.AttemptTTL), accounts, cfg.Google.Timeout)
		}
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	handlers.RegisterHealth(r, map[string]handlers.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			if rdb == nil {
				return nil
			}
			return rdb.Ping(ctx).Err()
		},
	})
	handlers.RegisterSwagger(r)

	sign := r.Group("/admin/sign")
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			sign.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			sign.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handlers.NewAuthHandler(cfg, accounts, linker, manager).Register(sign)

	auth := middleware.AuthMiddleware(manager, manager.CookieName())
	r.GET(handlers.DashboardPath, auth, middleware.RequireRole(models.RoleAdmin), handlers.Dashboard(products))

	api := r.Group("/api/v1", auth)
	api.GET("/me", handlers.Me)
	producthandler.RegisterProductRoutes(api, products)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting admin service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
