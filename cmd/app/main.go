package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/salesdojo/backend/internal/config"
	"github.com/salesdojo/backend/internal/db"
	httpServer "github.com/salesdojo/backend/internal/http"
	"github.com/salesdojo/backend/internal/http/handlers"
	"github.com/salesdojo/backend/internal/http/middleware"
	"github.com/salesdojo/backend/internal/logger"
	"github.com/salesdojo/backend/internal/migrations"
	"github.com/salesdojo/backend/internal/repository"
	"github.com/salesdojo/backend/internal/repository/memory"
	"github.com/salesdojo/backend/internal/service"
	"github.com/salesdojo/backend/internal/session"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.IsProduction())
	defer logger.Sync()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	var store repository.Store
	var pool *pgxpool.Pool
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		store = memory.NewSeededStore()
	default:
		pool = db.Connect(rootCtx, cfg.DatabaseURL)
		defer pool.Close()
		if cfg.AutoMigrate {
			if err := migrations.Up(pool); err != nil {
				logger.Fatal("migrations failed", "error", err)
			}
		}
		store = repository.NewPostgresStore(pool)
		checks["database"] = pool.Ping
	}

	rdb := db.ConnectRedis(rootCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	var blocklist repository.TokenBlocklist = memory.NewBlocklist()
	if rdb != nil {
		defer rdb.Close()
		blocklist = repository.NewRedisBlocklist(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	v := service.NewValidator()
	tokens := session.NewManager(cfg.JWTSecret)
	audit := service.NewAuditService(store.Audit)
	h := handlers.NewHandler(
		service.NewAuthService(store.Users, tokens, blocklist, audit, v, service.AuthConfig{
			BotToken: cfg.BotToken,
			MaxAge:   cfg.AuthMaxAge,
			Pepper:   cfg.PasswordPepper,
		}),
		service.NewContentService(store.Categories, store.Lessons, audit, v),
		service.NewProgressService(store.Progress, store.Lessons, v),
		service.NewAdminService(store.Users, store.Progress, audit, v),
		audit,
		handlers.CookieConfig{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger.Get()), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigins))
	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler: h,
		Health:  handlers.NewHealthHandler(version, checks),
		Limiter: middleware.NewRateLimiter(rdb),
		Limits: httpServer.Limits{
			API:    cfg.APIRateLimit,
			Auth:   cfg.AuthRateLimit,
			Write:  cfg.WriteRateLimit,
			Window: cfg.RateWindow,
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.Storage, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server terminated", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
