package comm

import (
	"errors"
	"fmt"
	"strconv"

	"book_exchange_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response json envelope shared by every REST endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ConnectCheck returns a handler answering "<service> start!"
// @Summary Check service status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "service start!"
// @Router / [get]
func ConnectCheck(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString(service + " start!")
	}
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging for the service
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "Service debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		statusStr := c.Query("status")
		logger.Log.Info("debug", zap.String("status", statusStr))
		status, err := strconv.ParseBool(statusStr)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}

		logger.Log.SetDebugMode(status)
		return c.SendString(fmt.Sprintf("service[%s]: debug mode is : %t", service, status))
	}
}

// OK writes data in a success envelope
func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Response{Success: true, Data: data})
}

// Fail writes err in an error envelope with the status mapped by statusOf
func Fail(c *fiber.Ctx, err error, statusOf func(error) int) error {
	status := fiber.StatusInternalServerError
	if statusOf != nil {
		status = statusOf(err)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return c.Status(status).JSON(Response{Success: false, Error: err.Error()})
}
