package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Hub tracks live clients. Registration goes through channels so that a
// client's send channel is closed exactly once, by the hub.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client // session id -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations until ctx is done, then closes every remaining
// connection. Later registrations are refused.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve runs a client until its connection ends. The greeting messages are
// queued before the pumps start.
func (h *Hub) Serve(ctx context.Context, client *Client, greeting []*Message, readLimit int64) {
	if !h.Register(client) {
		client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	for _, msg := range greeting {
		client.Send(msg)
	}

	go client.WritePump(ctx)
	client.ReadPump(ctx, readLimit)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.session.ID] = client
	n := len(h.clients)
	h.mu.Unlock()

	slog.Info("session opened", "session", client.session.ID, "scene", client.session.SceneID, "sessions", n)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.session.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.session.ID)
	close(client.send)
	n := len(h.clients)
	h.mu.Unlock()

	slog.Info("session closed", "session", client.session.ID, "sessions", n)
}

// closeAll leaves send channels open; a read pump may still be replying.
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
