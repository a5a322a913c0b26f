package handlers

import (
	"net/http"

	"clankertap/internal/config"
	"clankertap/internal/game"
	"clankertap/internal/http/middleware"
	"clankertap/internal/logger"
	"clankertap/internal/repository"
	"clankertap/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler bundles the services behind the API surface. Players and Upgrades
// are nil in demo mode; every handler that persists checks for that and
// stays in memory.
type Handler struct {
	Cfg         *config.Config
	Players     *repository.PlayerRepository
	Upgrades    *repository.UpgradeRepository
	Sessions    *game.Manager
	Bootstrap   *service.BootstrapService
	Missions    *service.MissionLedger
	Leaderboard *service.LeaderboardService
}

func NewHandler(cfg *config.Config, players *repository.PlayerRepository, upgrades *repository.UpgradeRepository,
	sessions *game.Manager, bootstrap *service.BootstrapService, missions *service.MissionLedger,
	leaderboard *service.LeaderboardService) *Handler {
	return &Handler{
		Cfg:         cfg,
		Players:     players,
		Upgrades:    upgrades,
		Sessions:    sessions,
		Bootstrap:   bootstrap,
		Missions:    missions,
		Leaderboard: leaderboard,
	}
}

// session returns the authenticated player's live session, rebuilding it
// from persisted state when the server restarted since auth. Writes the
// error response itself when it fails.
func (h *Handler) session(c *gin.Context) (*game.Session, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	if s, ok := h.Sessions.Get(userID); ok {
		return s, true
	}

	return h.restoreSession(c, userID)
}

func (h *Handler) restoreSession(c *gin.Context, userID int64) (*game.Session, bool) {
	if h.Players == nil {
		// Demo mode state lives only as long as its session; ask the client
		// to bootstrap again.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return nil, false
	}

	ctx := c.Request.Context()
	profile, err := h.Players.GetByTelegramID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return nil, false
	}
	levels, err := h.Upgrades.LevelsFor(ctx, userID)
	if err != nil {
		logger.Error("failed to load upgrades", "user", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile unavailable"})
		return nil, false
	}

	return h.Sessions.Acquire(profile, levels, "restored"), true
}
