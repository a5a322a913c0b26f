package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const leaderboardWindow = 100

// GetLeaderboard returns the top window by lifetime snips.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit := leaderboardWindow
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= leaderboardWindow {
			limit = n
		}
	}

	entries, err := h.Leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// GetMyRank looks up the player's own rank. Players inside the top window
// see their windowed rank; everyone else gets the count-of-richer-plus-one
// query.
func (h *Handler) GetMyRank(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	rank, err := h.Leaderboard.RankFor(c.Request.Context(), sess.TelegramID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rank unavailable"})
		return
	}

	snap := sess.Engine().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"rank":           rank,
		"all_time_snips": snap.AllTimeSnips,
	})
}
