package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ReferralLink returns the player's referral deep links: the Telegram
// start-param form and the plain query form used by Farcaster/web embeds.
func (h *Handler) ReferralLink(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	id := strconv.FormatInt(sess.TelegramID, 10)
	base := "https://t.me/" + h.Cfg.BotUsername + "/" + h.Cfg.GameShortName
	c.JSON(http.StatusOK, gin.H{
		"telegram_link": base + "?startapp=ref_" + id,
		"web_link":      base + "?ref=" + id,
	})
}

// ReferralStats reports how many players this player has referred.
func (h *Handler) ReferralStats(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var referred int64
	if h.Players != nil {
		n, err := h.Players.CountReferred(c.Request.Context(), sess.TelegramID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable"})
			return
		}
		referred = n
	}

	c.JSON(http.StatusOK, gin.H{"total_referred": referred})
}
