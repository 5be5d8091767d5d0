package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anjiri1684/teacheron/metrics"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// PresenceStore persists the online flag.
type PresenceStore interface {
	SetPresence(ctx context.Context, userID uuid.UUID, online bool) error
	RefreshPresence(ctx context.Context, userIDs []uuid.UUID) error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

type delivery struct {
	userID  uuid.UUID
	payload any
}

// Hub tracks open presence connections per user. A user is online from
// their first connection until their last one closes.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	send       chan delivery
	online     chan chan []uuid.UUID
	done       chan struct{}

	clients map[uuid.UUID]map[*Client]struct{}

	store   PresenceStore
	refresh time.Duration
	logger  *slog.Logger
}

func NewHub(store PresenceStore, refresh time.Duration, logger *slog.Logger) *Hub {
	if refresh <= 0 {
		refresh = time.Minute
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan delivery, 64),
		online:     make(chan chan []uuid.UUID),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		store:      store,
		refresh:    refresh,
		logger:     logger,
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Send pushes payload to every connection of userID. Offline users are skipped.
func (h *Hub) Send(userID uuid.UUID, payload any) {
	select {
	case h.send <- delivery{userID: userID, payload: payload}:
	default:
		h.logger.Warn("presence hub send buffer full", "user_id", userID)
	}
}

// OnlineUsers returns the users with at least one open connection, or nil
// once the hub has stopped.
func (h *Hub) OnlineUsers() []uuid.UUID {
	reply := make(chan []uuid.UUID, 1)
	select {
	case h.online <- reply:
		return <-reply
	case <-h.done:
		return nil
	}
}

// Run serves the hub until ctx is cancelled, then closes every connection.
// The hub goroutine is the only writer to registered connections.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.refresh)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, conns := range h.clients {
				for c := range conns {
					c.Conn.Close()
				}
				delete(h.clients, id)
				metrics.OnlineUsers.Dec()
			}
			return

		case c := <-h.register:
			conns, ok := h.clients[c.UserID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.clients[c.UserID] = conns
			}
			conns[c] = struct{}{}
			if !ok {
				metrics.OnlineUsers.Inc()
				h.setPresence(ctx, c.UserID, true)
			}

		case c := <-h.unregister:
			h.remove(ctx, c)

		case d := <-h.send:
			for c := range h.clients[d.userID] {
				if err := c.Conn.WriteJSON(d.payload); err != nil {
					h.logger.Warn("presence push failed", "user_id", d.userID, "error", err)
					c.Conn.Close()
					h.remove(ctx, c)
				}
			}

		case reply := <-h.online:
			reply <- h.onlineIDs()

		case <-ticker.C:
			if err := h.store.RefreshPresence(ctx, h.onlineIDs()); err != nil {
				h.logger.Error("presence refresh failed", "error", err)
			}
		}
	}
}

func (h *Hub) remove(ctx context.Context, c *Client) {
	conns, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
		metrics.OnlineUsers.Dec()
		h.setPresence(ctx, c.UserID, false)
	}
}

func (h *Hub) onlineIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) setPresence(ctx context.Context, userID uuid.UUID, online bool) {
	if err := h.store.SetPresence(ctx, userID, online); err != nil {
		h.logger.Error("presence update failed", "user_id", userID, "online", online, "error", err)
	}
}
