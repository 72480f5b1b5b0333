package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"promptgate/internal/ratelimit"
)

// RateLimitMiddleware rejects requests that exceed a client's quota before
// they reach the provider adapter.
type RateLimitMiddleware struct {
	limiter    *ratelimit.Service
	trustProxy bool
}

func NewRateLimitMiddleware(limiter *ratelimit.Service, trustProxy bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, trustProxy: trustProxy}
}

func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.limiter == nil {
			return c.Next()
		}

		client := m.clientID(c)

		decision, err := m.limiter.Allow(c.Context(), client, c.Path())
		if err != nil {
			if ratelimit.IsLimitExceededError(err) {
				c.Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision)))
				setQuotaHeaders(c, decision)
				return fiber.NewError(fiber.StatusTooManyRequests, decision.Reason())
			}

			logrus.Errorf("rate limiter failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "rate limiter unavailable")
		}

		setQuotaHeaders(c, decision)
		return c.Next()
	}
}

// clientID buckets counters by the caller's network origin. Proxy headers are
// honored only when the deployment says they are trustworthy.
func (m *RateLimitMiddleware) clientID(c fiber.Ctx) string {
	if m.trustProxy {
		if xff := strings.TrimSpace(c.Get("X-Forwarded-For")); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}
	return c.IP()
}

func setQuotaHeaders(c fiber.Ctx, d ratelimit.Decision) {
	if d.Limit <= 0 {
		return
	}
	c.Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	c.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
}

func retryAfterSeconds(d ratelimit.Decision) int {
	secs := int(d.RetryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
