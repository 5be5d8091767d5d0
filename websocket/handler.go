package websocket

import (
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/anjiri1684/teacheron/models"
)

// socket is the connection surface serve needs.
type socket interface {
	Conn
	ReadMessage() (messageType int, p []byte, err error)
}

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired(c *fiber.Ctx) error {
	if !websocketcontrib.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Handler keeps the caller registered for as long as the socket stays open.
// userKey names the Locals entry holding the authenticated *models.User.
func (h *Hub) Handler(userKey string) fiber.Handler {
	return websocketcontrib.New(func(conn *websocketcontrib.Conn) {
		user, ok := conn.Locals(userKey).(*models.User)
		if !ok {
			_ = conn.WriteJSON(fiber.Map{"status": "error", "message": "not signed in"})
			conn.Close()
			return
		}
		h.serve(user.ID, conn)
	})
}

// serve greets conn and then hands all writes to the hub goroutine. It
// returns when the peer goes away or the hub stops.
func (h *Hub) serve(userID uuid.UUID, conn socket) {
	if err := conn.WriteJSON(fiber.Map{"type": "presence", "online": true}); err != nil {
		conn.Close()
		return
	}

	client := &Client{UserID: userID, Conn: conn}
	if !h.Register(client) {
		conn.Close()
		return
	}
	defer func() {
		h.Unregister(client)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
