package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"reflex_drills/internal/game"
	"reflex_drills/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	// per-connection message budget; a player cannot press faster than this
	messageRate  = 40
	messageBurst = 80
)

type Client struct {
	PlayerID string
	Kind     game.Kind
	Conn     *websocket.Conn
	Send     chan []byte

	hub     *Hub
	host    *Host
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(playerID string, kind game.Kind, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID: playerID,
		Kind:     kind,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		hub:      hub,
		limiter:  rate.NewLimiter(rate.Limit(messageRate), messageBurst),
		done:     make(chan struct{}),
	}
}

// Run attaches the client to a session and pumps messages until the
// connection drops or the session is replaced.
func (c *Client) Run() {
	go c.writePump()

	host, err := c.hub.Attach(c)
	if err != nil {
		logger.Warn("Client.Run: attach failed", "player", c.PlayerID, "game", c.Kind, "error", err)
		c.Enqueue(errorMessage("cannot start game"))
		c.Close()
		return
	}
	c.host = host
	c.Enqueue(host.ready())

	c.readPump()
	c.hub.Detach(host)
}

func (c *Client) readPump() {
	defer c.Close()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			logger.Debug("Client.readPump: read ended", "player", c.PlayerID, "error", err)
			return
		}
		if !c.limiter.Allow() {
			InputsThrottled.Inc()
			c.Enqueue(errorMessage("too many messages"))
			continue
		}
		c.host.HandleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			if !c.write(msg) {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// flush what is queued, then say goodbye
			for {
				select {
				case msg := <-c.Send:
					if !c.write(msg) {
						return
					}
					continue
				default:
				}
				break
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(msg []byte) bool {
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		logger.Debug("Client.writePump: write error", "player", c.PlayerID, "error", err)
		return false
	}
	return true
}

// Enqueue queues msg for the writer. It never blocks; a full queue drops
// the message.
func (c *Client) Enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Send <- msg:
		return true
	default:
		logger.Warn("Client.Enqueue: send queue full, dropping message", "player", c.PlayerID)
		return false
	}
}

// Close ends the connection. The writer flushes pending messages first.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once Close has been called.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
