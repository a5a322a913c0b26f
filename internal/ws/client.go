package ws

import (
	"time"

	"clankertap/internal/game"
	"clankertap/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client pipes one session's event stream to a websocket: an economy
// snapshot every regen tick plus combo/streak/lucky transients. The read
// side only watches for the peer going away.
type Client struct {
	conn    *websocket.Conn
	session *game.Session
	events  chan game.Event
}

func NewClient(conn *websocket.Conn, session *game.Session) *Client {
	return &Client{
		conn:    conn,
		session: session,
		events:  session.Subscribe(),
	}
}

// Run serves the connection until either side closes. It sends the current
// snapshot immediately so clients render without waiting for the next tick.
func (c *Client) Run() {
	defer func() {
		c.session.Unsubscribe(c.events)
		c.conn.Close()
	}()

	first := game.Event{Type: game.EventSnapshot, Payload: c.session.Engine().Snapshot()}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(first); err != nil {
		return
	}

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user", c.session.TelegramID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
