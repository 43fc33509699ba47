package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

// Hub fans persisted batches out to live websocket subscribers. Clients either follow every
// endpoint or subscribe to individual endpoint topics.
type Hub struct {
	topics  map[string]map[*Client]struct{}
	clients map[string]*Client
	global  map[*Client]struct{}
	closed  bool
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[string]*Client),
		global:  make(map[*Client]struct{}),
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

func (h *Hub) registerClient(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	slog.Info("ws client registered", slog.String("clientId", c.id), slog.String("subject", c.subject))
	return true
}

func (h *Hub) subscribe(c *Client, topic string) error {
	if !c.allows(topic) {
		return fmt.Errorf("topic %q not permitted", topic)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	c.subscribed[topic] = struct{}{}
	return nil
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.subscribed, topic)
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	for topic := range c.subscribed {
		if subs, ok := h.topics[topic]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	delete(h.clients, c.id)
	delete(h.global, c)
	c.close()
	slog.Info("ws client detached", slog.String("clientId", c.id))
}

// Broadcast delivers msg to every client following msg.Endpoint. Slow clients whose buffer is
// full are dropped rather than blocking the poller.
func (h *Hub) Broadcast(msg *domain.StreamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	topic := h.topics[msg.Endpoint]
	clients := make([]*Client, 0, len(topic)+len(h.global))
	for c := range topic {
		clients = append(clients, c)
	}
	for c := range h.global {
		if _, dup := topic[c]; dup {
			continue
		}
		if !c.allows(msg.Endpoint) {
			continue
		}
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.enqueue(data)
	}
}

// WriteBatch lets the hub act as a mirror sink.
func (h *Hub) WriteBatch(_ context.Context, batch domain.Batch) error {
	h.Broadcast(domain.NewStreamMessage(batch))
	return nil
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, c := range h.clients {
		h.detachLocked(c)
	}
	return nil
}

// AttachClient registers c for the given endpoint topics, or for every endpoint when none are given.
func (h *Hub) AttachClient(c *Client, topics []string) error {
	if !h.registerClient(c) {
		c.close()
		return port.ErrSinkClosed
	}
	follow := make([]string, 0, len(topics))
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			follow = append(follow, trimmed)
		}
	}
	if len(follow) == 0 {
		h.mu.Lock()
		h.global[c] = struct{}{}
		h.mu.Unlock()
		slog.Info("ws client following all endpoints", slog.String("clientId", c.id))
		return nil
	}
	for _, topic := range follow {
		if err := h.subscribe(c, topic); err != nil {
			h.detachClient(c)
			return err
		}
	}
	slog.Info("ws client attached", slog.String("clientId", c.id), slog.Any("topics", follow))
	return nil
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ port.RecordSink = (*Hub)(nil)
