package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestRateLimiterPerKey(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(2, time.Hour)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests rejected")
	}
	if rl.Allow("a") {
		t.Fatal("third request allowed")
	}
	if !rl.Allow("b") {
		t.Fatal("other client throttled")
	}
	if n := rl.Prune(-time.Second); n != 2 {
		t.Fatalf("pruned %d buckets, want 2", n)
	}
	if !rl.Allow("a") {
		t.Fatal("pruned client still throttled")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	t.Parallel()
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 5*time.Minute)
	rl.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected", i)
		}
	}
	ok, wait := rl.take("1.2.3.4")
	if ok {
		t.Fatal("sixth request allowed")
	}
	if wait != time.Minute {
		t.Fatalf("wait = %v, want 1m", wait)
	}

	clock = clock.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("token not refilled after a minute")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("refilled more than one token")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()
	app := fiber.New()
	app.Use(RateLimit(NewRateLimiter(1, time.Hour), "Too many registrations"))
	app.Get("/api/site/settings", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/site/settings", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != want {
			t.Fatalf("request %d: status = %d, want %d", i, resp.StatusCode, want)
		}
		if want == http.StatusTooManyRequests && resp.Header.Get("Retry-After") == "" {
			t.Fatal("429 without Retry-After")
		}
	}
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health check throttled: %d", resp.StatusCode)
	}
}
