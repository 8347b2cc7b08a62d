package router

import (
	"context"

	"book_exchange_service/internal/api/comm"
	"book_exchange_service/internal/book/app"
	"book_exchange_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 註冊 book 相關的路由
// @title Book Exchange Service API
// @version 1.0
// @description Book listings, nearby search, book requests and notifications
// @host localhost:8082
// @BasePath /
func RegisterRoutes(ctx context.Context, r *fiber.App, service string, geoWebsocket *app.GeosearchWebsocketHandler, bookHTTP *app.BookHTTPHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", comm.ConnectCheck(service))
	r.Post("/debug", comm.DebugLogFlag(service))
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	r.Get("/radius/steps", bookHTTP.RadiusSteps)
	r.Get("/geocode/status", bookHTTP.ProviderStatus)

	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws/geosearch", websocket.New(func(c *websocket.Conn) {
		geoWebsocket.HandleConnection(ctx, c)
	}))

	geo := r.Group("/geocode")
	geo.Get("/suggest", bookHTTP.Suggest)
	geo.Get("/place/:id", bookHTTP.Place)
	geo.Get("/reverse", bookHTTP.Reverse)
	geo.Post("/reload", bookHTTP.ReloadProvider)

	books := r.Group("/books")
	books.Get("/nearby", bookHTTP.Nearby)
	books.Get("/mine", bookHTTP.MyBooks)
	books.Post("/", bookHTTP.CreateBook)
	books.Get("/:id", bookHTTP.GetBook)

	r.Get("/metadata/search", bookHTTP.SearchMetadata)

	requests := r.Group("/requests")
	requests.Post("/", bookHTTP.RequestBook)
	requests.Get("/incoming", bookHTTP.IncomingRequests)
	requests.Get("/outgoing", bookHTTP.OutgoingRequests)
	requests.Patch("/:id", bookHTTP.UpdateRequest)

	notifications := r.Group("/notifications")
	notifications.Get("/", bookHTTP.Notifications)
	notifications.Post("/:id/read", bookHTTP.MarkNotificationRead)
}
