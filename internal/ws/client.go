package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Makuqty/GridLock/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Envelope is the wire frame for every message in both directions
type Envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event model.EventType `json:"event"`
	Data  any             `json:"data,omitempty"`
}

// Client is one WebSocket connection. It implements model.Transport, so
// the services hold it only as a weak handle; the connection's lifecycle
// is owned entirely by the pumps.
type Client struct {
	conn       *websocket.Conn
	dispatcher *Dispatcher
	send       chan []byte
	logger     *slog.Logger

	mu       sync.Mutex
	username model.Username
}

// Ensure Client implements Transport
var _ model.Transport = (*Client)(nil)

func newClient(conn *websocket.Conn, dispatcher *Dispatcher, logger *slog.Logger) *Client {
	return &Client{
		conn:       conn,
		dispatcher: dispatcher,
		send:       make(chan []byte, sendBufferSize),
		logger:     logger,
	}
}

// Send queues an event for delivery. If the peer cannot keep up and the
// buffer is full the event is dropped; a peer that slow is as good as
// disconnected and the ping timeout will reap it.
func (c *Client) Send(event model.EventType, data any) {
	payload, err := json.Marshal(outbound{Event: event, Data: data})
	if err != nil {
		c.logger.Error("failed to marshal event",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("send buffer full, dropping event", slog.String("event", string(event)))
	}
}

// Username returns the authenticated identity, or empty before auth
func (c *Client) Username() model.Username {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Client) setUsername(username model.Username) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = username
}

// readPump reads envelopes off the connection and hands them to the
// dispatcher. It runs on the connection's goroutine and triggers cleanup
// when the connection dies.
func (c *Client) readPump() {
	defer func() {
		c.dispatcher.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.logger.Debug("dropping malformed frame", slog.String("error", err.Error()))
			continue
		}
		c.dispatcher.dispatch(c, env)
	}
}

// writePump drains the send buffer onto the connection and keeps the
// peer alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
