package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated player's profile and live economy state.
func (h *Handler) Me(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	combo, multiplier, streak := sess.Combo().State()
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"telegram_id": sess.TelegramID,
			"username":    sess.Username,
			"platform":    sess.Platform,
		},
		"state":      sess.Engine().Snapshot(),
		"combo":      combo,
		"multiplier": multiplier,
		"streak":     streak,
	})
}
