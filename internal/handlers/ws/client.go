package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// sendQueueSize bounds the per-connection outbound queue. A slow reader
	// drops frames rather than stalling broadcasts to everyone else.
	sendQueueSize = 64

	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Client is one live connection for a (user, conversation) pair. A user may
// hold several clients at once, one per device or tab.
type Client struct {
	UserID         uint
	ConnID         string
	ConversationID uint

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID uint, connID string, conversationID uint, conn *websocket.Conn) *Client {
	return &Client{
		UserID:         userID,
		ConnID:         connID,
		ConversationID: conversationID,
		conn:           conn,
		send:           make(chan []byte, sendQueueSize),
		done:           make(chan struct{}),
	}
}

// Enqueue hands a frame to the write pump without blocking. Frames are dropped
// when the queue is full; the reader is too slow to be worth waiting on.
func (c *Client) Enqueue(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("dropping frame for slow websocket client",
			"user_id", c.UserID, "conn_id", c.ConnID)
	}
}

// WritePump is the single writer for the connection. It drains the send queue
// and keeps the connection alive with pings; it returns when the client is
// closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("websocket write failed",
					"user_id", c.UserID, "conn_id", c.ConnID, "error", err)
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

// Close releases the client exactly once. Safe to call from the read loop,
// the write pump, and the cleanup path concurrently.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done reports when the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
