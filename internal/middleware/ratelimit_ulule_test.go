package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/request"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func TestRateLimitKey(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	anon := httptest.NewRequest("GET", "/", nil)
	anon.RemoteAddr = "10.0.0.1:1234"
	if got := rateLimitKey(anon); got != "ip:10.0.0.1" {
		t.Errorf("rateLimitKey(anon) = %q", got)
	}

	authed := httptest.NewRequest("GET", "/", nil)
	authed = authed.WithContext(request.WithUser(authed.Context(), &models.User{ID: userID}))
	if got := rateLimitKey(authed); got != "user:"+userID.String() {
		t.Errorf("rateLimitKey(authed) = %q", got)
	}
}

func TestLimiterMiddleware_Rejects(t *testing.T) {
	t.Parallel()

	rate, err := limiter.NewRateFromFormatted("2-M")
	if err != nil {
		t.Fatalf("NewRateFromFormatted() error = %v", err)
	}
	mw := newLimiterMiddleware(limiter.New(memory.NewStore(), rate))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/v1/tasks", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
}

func TestRateLimit_InvalidRate(t *testing.T) {
	t.Parallel()

	if _, err := RateLimit(nil, "garbage"); err == nil {
		t.Error("Expected an error for an unparseable rate")
	}
}
