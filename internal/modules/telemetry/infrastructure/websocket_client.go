package infrastructure

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/shared/auth"
	"openF1Poll/internal/shared/normalization"
)

// Command is a control frame sent by a subscriber.
type Command struct {
	Action string `json:"action"`
	Topic  string `json:"topic,omitempty"`
}

// controlReply acknowledges a command.
type controlReply struct {
	Action    string    `json:"action"`
	Topic     string    `json:"topic,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	subject    string
	claims     *auth.StreamClaims
	subscribed map[string]struct{}

	// mu guards send against a concurrent close.
	mu     sync.Mutex
	closed bool
}

// NewClient wraps conn. claims may be nil when the stream is unauthenticated.
func NewClient(hub *Hub, conn *websocket.Conn, claims *auth.StreamClaims, buf int) *Client {
	if buf <= 0 {
		buf = 16
	}
	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, buf),
		id:         uuid.NewString(),
		claims:     claims,
		subscribed: make(map[string]struct{}),
	}
	if claims != nil {
		client.subject = claims.Subject
	}
	return client
}

func (c *Client) allows(endpoint string) bool {
	return c.claims.Allows(endpoint)
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// enqueue queues data without blocking. Data for a closed client is dropped; a full buffer
// detaches the client.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	select {
	case c.send <- data:
		c.mu.Unlock()
		return true
	default:
	}
	c.mu.Unlock()

	slog.Warn("websocket send buffer full", slog.String("clientId", c.id))
	go c.hub.detachClient(c)
	return false
}

func (c *Client) reply(action, topic string, err error) {
	msg := controlReply{Action: action, Topic: topic, Timestamp: time.Now().UTC()}
	if err != nil {
		msg.Error = err.Error()
	}
	data, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		slog.Error("websocket marshal error", slog.Any("error", marshalErr))
		return
	}
	c.enqueue(data)
}

func (c *Client) WritePump() {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.Any("error", err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				slog.Warn("websocket ping error", slog.Any("error", err))
				return
			}
		}
	}
}

func (c *Client) ReadPump() {
	c.conn.SetReadLimit(1 << 12)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	defer c.hub.detachClient(c)
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", slog.String("clientId", c.id), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.handle(cmd)
	}
}

func (c *Client) handle(cmd Command) {
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	topic := normalization.NormalizeEndpoint(cmd.Topic)
	switch action {
	case "subscribe":
		if topic == "" {
			return
		}
		if !IsValidEndpoint(topic) {
			c.reply("subscribed", topic, fmt.Errorf("%w: %q", port.ErrUnknownEndpoint, topic))
			return
		}
		c.reply("subscribed", topic, c.hub.subscribe(c, topic))
	case "unsubscribe":
		if topic == "" {
			return
		}
		c.hub.unsubscribe(c, topic)
		c.reply("unsubscribed", topic, nil)
	case "ping":
		c.reply("pong", "", nil)
	default:
		slog.Debug("ws command ignored", slog.String("clientId", c.id), slog.String("action", action))
	}
}
