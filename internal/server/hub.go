package server

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const hubQueueSize = 256

// Client is one WebSocket connection.
type Client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

func (c *Client) ID() uuid.UUID {
	return c.id
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub fans messages out to every connected client. All client bookkeeping
// happens on the Run goroutine; a client whose send buffer is full is
// dropped rather than waited for.
type Hub struct {
	logger *zap.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage
	done       chan struct{}

	connected atomic.Int64
	dropped   atomic.Int64
}

var _ game.Publisher = (*Hub)(nil)

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, hubQueueSize),
		direct:     make(chan directMessage, hubQueueSize),
		done:       make(chan struct{}),
	}
}

// Run services the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))
			h.logger.Info("client connected",
				zap.String("client_id", client.id.String()),
				zap.Int("clients", len(h.clients)),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Info("client disconnected",
					zap.String("client_id", client.id.String()),
					zap.Int("clients", len(h.clients)),
				)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}

		case msg := <-h.direct:
			if _, ok := h.clients[msg.client]; ok {
				h.deliver(msg.client, msg.payload)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		h.remove(client)
		h.dropped.Add(1)
		h.logger.Warn("dropped slow client", zap.String("client_id", client.id.String()))
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.connected.Store(int64(len(h.clients)))
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Broadcast queues v for every client. It never blocks; when the queue is
// full the message is dropped and logged.
func (h *Hub) Broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode broadcast", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("broadcast queue full, message dropped")
	}
}

// Send queues v for a single client without blocking.
func (h *Hub) Send(c *Client, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode message", zap.Error(err))
		return
	}
	select {
	case h.direct <- directMessage{client: c, payload: payload}:
	default:
		h.logger.Warn("direct queue full, message dropped",
			zap.String("client_id", c.id.String()),
		)
	}
}

func (h *Hub) PublishState(state game.GameState) {
	h.Broadcast(newStateMessage(state))
}

func (h *Hub) PublishResult(result game.RoundResult) {
	h.Broadcast(resultMessage{Action: ActionGameResult, RoundResult: result})
}

func (h *Hub) PublishRefreshStats() {
	h.Broadcast(actionMessage{Action: ActionRefreshStats})
}
