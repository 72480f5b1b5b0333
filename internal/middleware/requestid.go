package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const RequestIDKey = "request_id"

// RequestID honors an inbound X-Request-Id and generates one otherwise; the
// id is echoed on the response and picked up by the access log.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := c.Get("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(RequestIDKey, rid)
		c.Set("X-Request-Id", rid)
		return c.Next()
	}
}
