package middlewares

import (
	"strconv"
	"time"

	"book_exchange_service/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and duration per route pattern.
// The route pattern (e.g. /conversations/:id/messages) keeps label cardinality bounded.
func Metrics(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		path := c.Route().Path

		metrics.HTTPRequestsTotal.WithLabelValues(service, c.Method(), path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(service, c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
