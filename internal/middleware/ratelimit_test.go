package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"promptgate/internal/handler"
	"promptgate/internal/ratelimit"
	memorystorage "promptgate/internal/storage/memory"
)

func newLimitedApp(t *testing.T, store ratelimit.CounterStore, cfg ratelimit.Config, trustProxy bool, hits *int) *fiber.App {
	t.Helper()

	limiter, err := ratelimit.NewService(store, cfg)
	if err != nil {
		t.Fatalf("failed to create limiter: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(NewRateLimitMiddleware(limiter, trustProxy).Handler())
	app.Post("/generate/text", func(c fiber.Ctx) error {
		*hits++
		return c.JSON(fiber.Map{"generated_text": "ok"})
	})
	return app
}

func limitedRequest(t *testing.T, app *fiber.App, clientIP string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/generate/text", nil)
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestMiddlewareRejectsOverQuota(t *testing.T) {
	hits := 0
	app := newLimitedApp(t, memorystorage.New(), ratelimit.Config{PerMinute: 3}, true, &hits)

	var allowed, limited int
	for i := 0; i < 5; i++ {
		resp := limitedRequest(t, app, "203.0.113.7")
		switch resp.StatusCode {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++

			if resp.Header.Get("Retry-After") == "" {
				t.Fatalf("expected Retry-After header on 429")
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("expected JSON error body: %v", err)
			}
			if body["error"] != "rate limit exceeded: 3 per minute" {
				t.Fatalf("unexpected error body: %v", body)
			}
		default:
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
	}

	if allowed != 3 || limited != 2 {
		t.Fatalf("expected 3 allowed and 2 limited, got %d/%d", allowed, limited)
	}
	if hits != 3 {
		t.Fatalf("rate-limited requests must not reach the handler, got %d hits", hits)
	}
}

func TestMiddlewareIsolatesClients(t *testing.T) {
	hits := 0
	app := newLimitedApp(t, memorystorage.New(), ratelimit.Config{PerMinute: 1}, true, &hits)

	if resp := limitedRequest(t, app, "198.51.100.1"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected first client to pass, got %d", resp.StatusCode)
	}
	if resp := limitedRequest(t, app, "198.51.100.2"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected second client to have its own quota, got %d", resp.StatusCode)
	}
	if resp := limitedRequest(t, app, "198.51.100.1"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected first client's second request to be limited, got %d", resp.StatusCode)
	}
}

func TestMiddlewareIgnoresProxyHeadersWhenUntrusted(t *testing.T) {
	hits := 0
	app := newLimitedApp(t, memorystorage.New(), ratelimit.Config{PerMinute: 1}, false, &hits)

	// Without proxy trust both requests collapse onto the connection address,
	// so spoofed X-Forwarded-For values share one bucket.
	if resp := limitedRequest(t, app, "203.0.113.1"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", resp.StatusCode)
	}
	if resp := limitedRequest(t, app, "203.0.113.2"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected spoofed second request to be limited, got %d", resp.StatusCode)
	}
}

func TestMiddlewareSetsQuotaHeaders(t *testing.T) {
	hits := 0
	app := newLimitedApp(t, memorystorage.New(), ratelimit.Config{PerMinute: 5}, true, &hits)

	resp := limitedRequest(t, app, "203.0.113.9")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-RateLimit-Limit") != "5" {
		t.Fatalf("expected limit header 5, got %q", resp.Header.Get("X-RateLimit-Limit"))
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "4" {
		t.Fatalf("expected remaining header 4, got %q", resp.Header.Get("X-RateLimit-Remaining"))
	}
}

func TestMiddlewareStoreFailureIs500(t *testing.T) {
	hits := 0
	app := newLimitedApp(t, brokenStore{}, ratelimit.Config{PerMinute: 1}, true, &hits)

	resp := limitedRequest(t, app, "203.0.113.3")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store failure, got %d", resp.StatusCode)
	}
	if hits != 0 {
		t.Fatalf("request must not reach the handler when the limiter fails")
	}
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}
