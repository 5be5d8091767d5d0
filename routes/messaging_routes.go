package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/middleware"
	"github.com/anjiri1684/teacheron/websocket"
)

func MessagingRoutes(api fiber.Router, d Deps) {
	messages := api.Group("/messages", d.Protected)
	messages.Post("", d.Handler.SendMessage)
	messages.Get("/unread-count", d.Handler.UnreadCount)
	messages.Get("/conversations", d.Handler.GetConversations)
	messages.Get("/conversations/:userId", d.Handler.GetConversation)
	messages.Post("/conversations/:userId/read", d.Handler.MarkConversationRead)

	api.Get("/ws/presence", websocket.UpgradeRequired, d.Protected, d.Hub.Handler(middleware.CurrentUserKey))
}
