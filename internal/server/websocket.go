package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/Pranay13257/minibacarat/internal/config"
	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketServer serves the dealer and display clients.
type WebSocketServer struct {
	cfg        config.WebSocketConfig
	hub        *Hub
	table      *game.Table
	dispatcher *Dispatcher
	logger     *zap.Logger

	upgrader websocket.Upgrader
	http     *http.Server
	base     context.Context
}

// NewWebSocketServer wires the hub and dispatcher behind cfg.Path. base
// scopes the commands issued by clients.
func NewWebSocketServer(base context.Context, cfg config.WebSocketConfig, hub *Hub, table *game.Table, dispatcher *Dispatcher, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WebSocketServer{
		cfg:        cfg,
		hub:        hub,
		table:      table,
		dispatcher: dispatcher,
		logger:     logger,
		base:       base,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the WebSocket endpoint and /healthz.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	mux.HandleFunc("/healthz", s.serveHealth)
	return mux
}

// ListenAndServe blocks until the server is shut down.
func (s *WebSocketServer) ListenAndServe() error {
	s.logger.Info("starting WebSocket server",
		zap.String("address", s.cfg.Address),
		zap.String("path", s.cfg.Path),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WebSocketServer) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *WebSocketServer) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *WebSocketServer) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.Clients(),
	})
}

func (s *WebSocketServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, s.cfg.SendBuffer),
	}
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	// a new subscriber starts from the current snapshot
	s.hub.Send(client, newStateMessage(s.table.Snapshot()))

	go s.writePump(client)
	go s.readPump(client)
}

func (s *WebSocketServer) readPump(c *Client) {
	defer func() {
		s.hub.Unregister(c)
		c.conn.Close()
	}()

	if s.cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(s.cfg.MaxMessageSize)
	}
	c.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	reply := func(v any) { s.hub.Send(c, v) }
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error",
					zap.String("client_id", c.id.String()),
					zap.Error(err),
				)
			}
			return
		}
		s.dispatcher.Dispatch(s.base, message, reply)
	}
}

func (s *WebSocketServer) writePump(c *Client) {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
