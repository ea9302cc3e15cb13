package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkowalczyk/libreserve/internal/http/middlewares"
)

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(3, time.Minute)

	r := gin.New()
	r.POST("/login", rl.Middleware(middlewares.KeyByIP), okHandler)

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if code := do(); code != http.StatusOK {
			t.Fatalf("request %d got %d, want 200", i+1, code)
		}
	}

	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("4th request got %d, want 429", code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute)

	r := gin.New()
	r.POST("/login", rl.Middleware(middlewares.KeyByIP), okHandler)

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first client got %d, want 200", code)
	}

	if code := do("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("first client second call got %d, want 429", code)
	}

	// a different client has its own window
	if code := do("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("second client got %d, want 200", code)
	}
}

func TestRateLimiterSetsRetryAfter(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute)

	r := gin.New()
	r.POST("/login", rl.Middleware(middlewares.KeyByIP), okHandler)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	do()
	w := do()

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("429 response missing Retry-After")
	}
}
