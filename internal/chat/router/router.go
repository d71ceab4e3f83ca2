package router

import (
	"context"

	"chat_sync_service/internal/chat/app"
	"chat_sync_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes registers the chat REST and websocket routes
func RegisterRoutes(r *fiber.App, rest *app.ChatRestHandler, ws *app.ChatWebsocketHandler) {
	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		ws.HandleConnection(context.Background(), c)
	}))

	r.Get("/conversations", rest.ListConversations)
	r.Post("/conversations/direct", rest.StartDirect)
	r.Post("/conversations/:id/pin", rest.TogglePin)
	r.Post("/conversations/:id/archive", rest.ToggleArchive)
	r.Post("/conversations/:id/read", rest.MarkRead)
	r.Get("/conversations/:id/unread", rest.UnreadCount)
	r.Get("/conversations/:id/messages", rest.ListMessages)
	r.Post("/conversations/:id/messages", rest.SendMessage)

	r.Put("/messages/:id", rest.EditMessage)
	r.Delete("/messages/:id", rest.DeleteMessage)
	r.Post("/messages/:id/star", rest.ToggleStar)

	r.Post("/attachments", rest.UploadAttachment)
}
