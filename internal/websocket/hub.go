package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/metrics"
	"vidfetch-backend/internal/models"
)

// EventsChannel is the Redis channel that relays events between instances.
const EventsChannel = "vidfetch:events"

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans server events out to connected browsers. With a Redis client,
// events go through pub/sub so every instance's browsers see them.
type Hub struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID]*client
	redisClient *redis.Client
	logger      zerolog.Logger
}

// NewHub creates a hub; redisClient may be nil for single-instance setups.
func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]*client),
		redisClient: redisClient,
		logger:      xlog.WithComponent("websocket"),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	id := uuid.New()
	h.register(id, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[id] = &client{conn: conn}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SetWebsocketClients(n)
	h.logger.Debug().Str("client", id.String()).Int("clients", n).Msg("websocket connected")
}

func (h *Hub) unregister(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
	}
	metrics.SetWebsocketClients(n)
	h.logger.Debug().Str("client", id.String()).Int("clients", n).Msg("websocket disconnected")
}

// Publish delivers msg to every connected client, through Redis when configured.
func (h *Hub) Publish(ctx context.Context, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if h.redisClient != nil {
		if err := h.redisClient.Publish(ctx, EventsChannel, data).Err(); err != nil {
			return fmt.Errorf("publish event: %w", err)
		}
		return nil
	}

	h.broadcast(data)
	return nil
}

// Run relays Redis events to local clients until ctx is done. It returns
// immediately when the hub has no Redis client.
func (h *Hub) Run(ctx context.Context) error {
	if h.redisClient == nil {
		return nil
	}

	pubsub := h.redisClient.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	// Wait for the subscription so events published right after Run starts are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	targets := make(map[uuid.UUID]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(data); err != nil {
			h.logger.Debug().Err(err).Str("client", id.String()).Msg("dropping websocket client")
			h.unregister(id)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[uuid.UUID]*client)
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
	metrics.SetWebsocketClients(0)
}
