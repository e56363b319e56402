package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/event"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// tuning parameters
	writeWait      = 10 * time.Second    // time allowed to write a message to the peer
	pongWait       = 20 * time.Second    // time allowed to read the next pong message from the peer
	pingInterval   = (pongWait * 9) / 10 // send pings to peer with this period
	maxMessageSize = 64 * 1024           // max inbound message size (64KB)
	sendBufSize    = 256                 // per-connection outbound buffer size
	sendTimeout    = 2 * time.Second     // timeout for enqueuing outbound messages
)

// Client is one live connection belonging to exactly one authenticated user.
// Its read pump handles commands one at a time, in receipt order; different
// connections run fully in parallel.
type Client struct {
	ID     string
	userID string
	user   *model.User

	conn   *websocket.Conn
	hub    *Hub
	egress chan event.WsEvent
	logger *zap.Logger

	cancel context.CancelFunc
	ctx    context.Context
	once   sync.Once

	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool
	closedMu       sync.RWMutex
}

func newClient(user *model.User, conn *websocket.Conn, h *Hub, logger *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	clientID := uuid.New().String()

	return &Client{
		ID:         clientID,
		userID:     user.UserID,
		user:       user,
		conn:       conn,
		hub:        h,
		egress:     make(chan event.WsEvent, sendBufSize),
		logger:     logger.With(zap.String("client_id", clientID), zap.String("user_id", user.UserID)),
		cancel:     cancel,
		ctx:        ctx,
		connClosed: make(chan struct{}),
	}
}

// UserID returns the owning identity of this connection.
func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) readPump() {
	defer func() {
		c.hub.dropClient(c)
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var ev event.WsEvent

			if err := c.conn.ReadJSON(&ev); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					c.logger.Debug("client disconnected")
					return
				}

				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseInternalServerErr,
					websocket.CloseProtocolError,
				) {
					c.logger.Warn("unexpected close", zap.Error(err))
				}

				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					c.logger.Debug("client timed out, closing connection")
					return
				}

				c.logger.Debug("read error", zap.Error(err))
				return
			}

			// Commands for one connection are handled inline so they are
			// processed strictly in receipt order.
			c.hub.handleCommand(c, ev)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()

		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			if err := c.conn.WriteMessage(websocket.CloseMessage, nil); err != nil {
				c.logger.Debug("close write failed", zap.Error(err))
			}
			return
		case ev := <-c.egress:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) pongHandler(pongMsg string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// SafeSend attempts to enqueue an event for delivery. Returns false if the
// client is closed or its egress buffer stayed full past the send timeout.
func (c *Client) SafeSend(ev event.WsEvent) bool {
	if c.IsClosed() {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- ev:
		return true
	case <-time.After(sendTimeout):
		c.logger.Warn("egress full, dropping event", zap.String("event", ev.Event))
		return false
	}
}

func (c *Client) sendError(code, message string) {
	c.SafeSend(event.NewEvent(event.EventError, event.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

// Close shuts the connection down exactly once. The egress channel is left
// open so concurrent SafeSend calls can never hit a closed channel; they bail
// out on the cancelled context instead.
func (c *Client) Close() {
	c.once.Do(func() {
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()

		c.cancel()

		// Wait for writePump to close conn, or force close after timeout.
		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(5 * time.Second):
				if c.conn != nil {
					_ = c.conn.Close()
				}
			}
		}()
	})
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}
