package handlers

import (
	"errors"
	"io"
	"net/http"

	"clankertap/internal/domain"
	"clankertap/internal/logger"
	"clankertap/internal/platform"
	"clankertap/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth resolves the host platform, bootstraps the player profile and starts
// (or rejoins) the live session. The response carries the session token and
// the seeded economy snapshot so the client renders immediately.
func (h *Handler) Auth(c *gin.Context) {
	var payload platform.AuthPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if len(payload.InitData) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	prov, err := platform.Resolve(c.Request, payload, h.Cfg.BotToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
		return
	}

	ctx := c.Request.Context()
	profile, err := h.Bootstrap.Bootstrap(ctx, prov.User(), prov.ReferralParam())
	if err != nil {
		// Degrade to not-yet-loaded: the client blocks the tap loop and
		// retries on its next mount.
		logger.Error("bootstrap failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile unavailable"})
		return
	}

	levels := map[domain.UpgradeType]int{}
	if h.Upgrades != nil {
		levels, err = h.Upgrades.LevelsFor(ctx, profile.TelegramID)
		if err != nil {
			logger.Error("failed to load upgrades", "user", profile.TelegramID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile unavailable"})
			return
		}
	}

	sess := h.Sessions.Acquire(profile, levels, string(prov.Platform()))

	token, err := service.GenerateJWT(profile.TelegramID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"platform": prov.Platform(),
		"user": gin.H{
			"telegram_id": profile.TelegramID,
			"username":    profile.Username,
			"referred_by": profile.ReferredBy,
		},
		"state": sess.Engine().Snapshot(),
	})
}
