package http

import (
	"clankertap/internal/http/handlers"
	"clankertap/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the API surface onto the engine.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, db *pgxpool.Pool, version string) {
	health := handlers.NewHealthHandler(db, version)

	// Probes, no rate limiting
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	cfg := h.Cfg
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	v1.POST("/auth", h.Auth)

	v1.GET("/me", middleware.JWT(), h.Me)
	v1.GET("/game/state", middleware.JWT(), h.State)

	// Taps get their own per-user window on top of the per-IP one; within
	// it, energy availability remains the only gate.
	tapRL := middleware.TapRateLimit(cfg.TapRateLimit, cfg.TapRateWindow)
	v1.POST("/game/tap", middleware.JWT(), tapRL, h.Tap)

	v1.GET("/game/upgrades", middleware.JWT(), h.UpgradeInfo)
	v1.POST("/game/upgrade", middleware.JWT(), h.PurchaseUpgrade)

	v1.GET("/missions", middleware.JWT(), h.ListMissions)
	v1.POST("/missions/:id/claim", middleware.JWT(), h.ClaimMission)

	v1.GET("/referral/link", middleware.JWT(), h.ReferralLink)
	v1.GET("/referral/stats", middleware.JWT(), h.ReferralStats)

	v1.GET("/leaderboard", h.GetLeaderboard)
	v1.GET("/leaderboard/rank", middleware.JWT(), h.GetMyRank)

	// Session event stream; token rides the query string
	r.GET("/ws", h.WS)
}
