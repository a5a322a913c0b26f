package handlers

import (
	"net/http"

	"clankertap/internal/domain"
	"clankertap/internal/game"

	"github.com/gin-gonic/gin"
)

// maxTapBatch caps how many taps one request may carry. Clients batch the
// taps of a single animation frame; each one still runs full per-tap
// semantics against the engine.
const maxTapBatch = 100

type tapRequest struct {
	Count int `json:"count"`
}

// Tap applies a batch of taps. Taps past the point energy runs out are
// rejected individually; the response reports both counts plus the combo
// state after the batch.
func (h *Handler) Tap(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	req := tapRequest{Count: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
	}
	if req.Count < 1 {
		req.Count = 1
	}
	if req.Count > maxTapBatch {
		req.Count = maxTapBatch
	}

	var (
		accepted int
		last     game.TapResult
		lucky    []game.TapResult
	)
	for i := 0; i < req.Count; i++ {
		res, ok := sess.Tap()
		if !ok {
			break
		}
		accepted++
		last = res
		if res.Lucky {
			lucky = append(lucky, res)
		}
	}

	resp := gin.H{
		"accepted": accepted,
		"rejected": req.Count - accepted,
		"state":    sess.Engine().Snapshot(),
	}
	if accepted > 0 {
		resp["combo"] = last
	}
	if len(lucky) > 0 {
		resp["lucky"] = lucky
	}
	c.JSON(http.StatusOK, resp)
}

type purchaseRequest struct {
	Type domain.UpgradeType `json:"type"`
}

// PurchaseUpgrade buys the next level of an upgrade track. An unaffordable
// purchase is a normal rejected outcome, not an error status.
func (h *Handler) PurchaseUpgrade(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown upgrade type"})
		return
	}

	level, cost, purchased := sess.Purchase(c.Request.Context(), req.Type)
	c.JSON(http.StatusOK, gin.H{
		"purchased": purchased,
		"type":      req.Type,
		"level":     level,
		"cost":      cost,
		"next_cost": domain.UpgradeCost(req.Type, level),
		"state":     sess.Engine().Snapshot(),
	})
}

// UpgradeInfo returns the catalog with the player's current levels and next
// costs.
func (h *Handler) UpgradeInfo(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	snap := sess.Engine().Snapshot()
	items := make([]gin.H, 0, len(domain.UpgradeDefinitions))
	for _, t := range []domain.UpgradeType{
		domain.UpgradeTapPower, domain.UpgradePassiveIncome,
		domain.UpgradeEnergyMax, domain.UpgradeEnergyRegen,
	} {
		def := domain.UpgradeDefinitions[t]
		level := snap.Levels[t]
		items = append(items, gin.H{
			"type":        t,
			"name":        def.Name,
			"description": def.Description,
			"effect":      def.Effect,
			"level":       level,
			"next_cost":   domain.UpgradeCost(t, level),
		})
	}
	c.JSON(http.StatusOK, gin.H{"upgrades": items, "state": snap})
}

// State returns the live economy snapshot plus combo counters.
func (h *Handler) State(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	combo, multiplier, streak := sess.Combo().State()
	c.JSON(http.StatusOK, gin.H{
		"state":      sess.Engine().Snapshot(),
		"combo":      combo,
		"multiplier": multiplier,
		"streak":     streak,
	})
}
