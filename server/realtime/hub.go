// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package realtime pushes storefront events to connected browsers over
// a websocket channel. The hub only fans out; clients never influence
// server state through it.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub tracks connected websocket clients and broadcasts events to all
// of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleConnection upgrades the request and keeps the connection
// registered until the peer goes away.
//
// The upgrade hijacks the underlying TCP connection, so this handler
// must be mounted directly, not behind the buffering error presenter.
// The upgrader writes its own response on failure.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("Websocket upgrade failed")

		return
	}

	log.Info().
		Str("remote_addr", r.RemoteAddr).
		Msg("Client connected")

	h.add(conn)

	go h.readLoop(conn)
}

// Broadcast sends a JSON event to every connected client. Clients that
// fail to accept the write are dropped.
func (h *Hub) Broadcast(event string, payload any) {
	message := map[string]any{"event": event, "data": payload}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := conn.WriteJSON(message); err != nil {
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// Close disconnects every client and rejects future registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// ClientCount reports how many connections are currently registered.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		_ = conn.Close()

		return
	}

	h.clients[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, conn)
	_ = conn.Close()
}

// readLoop drains inbound frames so pings and close handshakes are
// processed. Inbound payloads are intentionally discarded.
//
// The ping goroutine's lifetime is bound to the read loop's: stopping a
// ticker does not close its channel, so the pinger selects on done as
// well and exits when the connection goes away.
func (h *Hub) readLoop(conn *websocket.Conn) {
	done := make(chan struct{})

	defer func() {
		close(done)
		h.remove(conn)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil,
					time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
