package router

import (
	"context"

	chatdocs "book_exchange_service/docs/chat"
	"book_exchange_service/internal/api/comm"
	"book_exchange_service/internal/chat/app"
	"book_exchange_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 註冊 chat 相關的路由
// @title Book Exchange Chat API
// @version 1.0
// @description Conversations, message history and read state
// @host localhost:8081
// @BasePath /
func RegisterRoutes(ctx context.Context, r *fiber.App, service string, chatWebsocket *app.ChatWebsocketHandler, chatHTTP *app.ChatHTTPHandler) {
	r.Get("/swagger/*", swagger.New(swagger.Config{InstanceName: chatdocs.SwaggerInfo.InstanceName()}))
	r.Get("/", comm.ConnectCheck(service))
	r.Post("/debug", comm.DebugLogFlag(service))
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(ctx, c)
	}))

	r.Get("/profile", chatHTTP.Profile)

	conv := r.Group("/conversations")
	conv.Get("/", chatHTTP.ListConversations)
	conv.Post("/", chatHTTP.StartConversation)
	conv.Get("/unread", chatHTTP.UnreadCounts)
	conv.Get("/:id/messages", chatHTTP.FetchMessages)
	conv.Post("/:id/messages", chatHTTP.SendMessage)
	conv.Post("/:id/read", chatHTTP.MarkRead)
}
