package hub

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Client struct {
	ID           string
	userID       string
	connectionID string
	conn         *websocket.Conn
	hub          *Hub
	egress       chan event.WsEvent

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

var (
	// tuning parameters
	writeWait         = 10 * time.Second    // time allowed to write a message to the peer
	pongWait          = 20 * time.Second    // time allowed to read the next pong message from the peer
	pingInterval      = (pongWait * 9) / 10 // send pings to peer with this period
	maxMessageSize    = 4 * 1024            // subscribers only send control frames and pings
	sendBufSize       = 64                  // per-connection outbound buffer size
	registerTimeout   = 5 * time.Second     // timeout for client registration
	unregisterTimeout = 5 * time.Second     // timeout for client unregistration
)

// RegisterClient subscribes conn to the room of connectionID and starts its pumps.
func RegisterClient(userID, connectionID string, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(h.ctx)

	client := &Client{
		ID:           uuid.New().String(),
		userID:       userID,
		connectionID: connectionID,
		conn:         conn,
		hub:          h,
		egress:       make(chan event.WsEvent, sendBufSize),
		ctx:          ctx,
		cancel:       cancel,
	}

	select {
	case h.register <- client:
		go client.readPump()
		go client.writePump()
		return client
	case <-time.After(registerTimeout):
		h.logger.Warn("failed to register subscriber: timeout", zap.String("client_id", client.ID))
		cancel()
		return nil
	case <-h.ctx.Done():
		cancel()
		return nil
	}
}

// readPump only drains the socket so pongs and close frames are processed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		case <-time.After(unregisterTimeout):
			c.hub.logger.Warn("failed to unregister subscriber: timeout", zap.String("client_id", c.ID))
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			var ne net.Error
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.hub.logger.Debug("subscriber disconnected", zap.String("client_id", c.ID))
			case errors.As(err, &ne) && ne.Timeout():
				c.hub.logger.Debug("subscriber timed out", zap.String("client_id", c.ID))
			default:
				c.hub.logger.Debug("subscriber read ended", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.egress:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.hub.logger.Debug("write to subscriber failed", zap.String("client_id", c.ID), zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.Close()
				return
			}
		}
	}
}

// SafeSend enqueues ev without blocking. It returns false when the client is closed or its
// buffer is full.
func (c *Client) SafeSend(ev event.WsEvent) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.egress <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
	})
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	return c.ctx.Err() != nil
}
