package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clankertap/internal/config"
	"clankertap/internal/db"
	"clankertap/internal/game"
	httpserver "clankertap/internal/http"
	"clankertap/internal/http/handlers"
	"clankertap/internal/http/middleware"
	"clankertap/internal/logger"
	"clankertap/internal/repository"
	"clankertap/internal/service"
	"clankertap/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	var (
		pool     *pgxpool.Pool
		players  *repository.PlayerRepository
		upgrades *repository.UpgradeRepository
	)
	if !cfg.DemoMode {
		pool = db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		players = repository.NewPlayerRepository(pool)
		upgrades = repository.NewUpgradeRepository(pool)
	}

	// Session savers are nil interfaces in demo mode so flushes no-op.
	var saver game.Saver
	var upgradeSaver game.UpgradeSaver
	if players != nil {
		saver = players
		upgradeSaver = upgrades
	}
	sessions := game.NewManager(saver, upgradeSaver, cfg.RegenInterval, cfg.SaveInterval, cfg.SessionIdleTTL)
	sessions.StartCleanup()

	var kv store.KV
	if redisKV := store.NewRedisKV(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); redisKV != nil {
		kv = redisKV
	} else {
		kv = store.NewMemoryKV()
	}

	h := handlers.NewHandler(
		cfg,
		players,
		upgrades,
		sessions,
		service.NewBootstrapService(playerStoreOrNil(players)),
		service.NewMissionLedger(kv, cfg.MissionClaimWait),
		service.NewLeaderboardService(leaderboardStoreOrNil(players)),
	)

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	r := gin.Default()
	r.Use(cors(cfg.AllowedOrigin))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httpserver.RegisterRoutes(r, h, pool, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "demo", cfg.DemoMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	// Stop every session last: each performs a final snapshot flush.
	sessions.Shutdown()
	logger.Info("server exited")
}

// playerStoreOrNil avoids handing the bootstrap a typed-nil interface, which
// would defeat its demo-mode check.
func playerStoreOrNil(r *repository.PlayerRepository) service.PlayerStore {
	if r == nil {
		return nil
	}
	return r
}

func leaderboardStoreOrNil(r *repository.PlayerRepository) service.LeaderboardStore {
	if r == nil {
		return nil
	}
	return r
}

func cors(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowedOrigin == "" || origin == allowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
