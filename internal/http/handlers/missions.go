package handlers

import (
	"errors"
	"net/http"

	"clankertap/internal/service"

	"github.com/gin-gonic/gin"
)

// ListMissions returns the catalog joined with the player's completion
// state, after the daily reset has been applied.
func (h *Handler) ListMissions(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	statuses, err := h.Missions.Statuses(c.Request.Context(), sess.TelegramID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "missions unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"missions": statuses})
}

// ClaimMission starts a mission claim. Link missions answer with a pending
// claim and credit after the verification wait; instant missions credit in
// the response.
func (h *Handler) ClaimMission(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	res, err := h.Missions.Claim(c.Request.Context(), sess.TelegramID, c.Param("id"), sess.Grant)
	switch {
	case errors.Is(err, service.ErrUnknownMission):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown mission"})
	case errors.Is(err, service.ErrMissionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "mission already completed"})
	case errors.Is(err, service.ErrClaimInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "claim already in progress"})
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "missions unavailable"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"claim": res,
			"state": sess.Engine().Snapshot(),
		})
	}
}
