package handlers

import (
	"net/http"

	"clankertap/internal/logger"
	"clankertap/internal/service"
	"clankertap/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades to the session event stream. The token rides the query string
// since browsers cannot set headers on websocket dials.
func (h *Handler) WS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	userID, err := service.ParseJWT(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	sess, ok := h.Sessions.Get(userID)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "no active session"})
		return
	}

	allowedOrigin := h.Cfg.AllowedOrigin
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err)
		return
	}

	go ws.NewClient(conn, sess).Run()
}
