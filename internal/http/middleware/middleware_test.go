package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pacuit/conferencia/internal/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSRestrictedOrigins(t *testing.T) {
	handler := CORS([]string{"https://pacuit.org", "*.conferencia.dev"})(okHandler)

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"https://pacuit.org", true},
		{"https://admin.conferencia.dev", true},
		{"https://conferencia.dev", false},
		{"https://evil.example", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", tc.origin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin")
		if tc.allowed && got != tc.origin {
			t.Fatalf("%s: expected origin echoed got %q", tc.origin, got)
		}
		if !tc.allowed && got != "" {
			t.Fatalf("%s: expected no CORS header got %q", tc.origin, got)
		}
		if tc.allowed && rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Fatalf("%s: expected credentials header", tc.origin)
		}
	}
}

func TestCORSWildcardEchoesRequestedHeaders(t *testing.T) {
	handler := CORS([]string{"*"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom, Content-Type")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") != "X-Custom, Content-Type" {
		t.Fatalf("unexpected allow headers %q", rec.Header().Get("Access-Control-Allow-Headers"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatal("wildcard must not allow credentials")
	}
}

func TestRequireAdminDisabledWithoutManager(t *testing.T) {
	handler := RequireAdmin(nil)(okHandler)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through got %d", rec.Code)
	}
}

func TestRequireAdminInjectsSubject(t *testing.T) {
	tokens := auth.NewJWTManager("0123456789abcdef0123456789abcdef", time.Minute)
	token, _, err := tokens.GenerateAccessToken("operadora")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	var subject string
	handler := RequireAdmin(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = GetSubject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || subject != "operadora" {
		t.Fatalf("unexpected result %d subject=%q", rec.Code, subject)
	}
}

func TestRateLimiterExpiresIdleBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	now := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") {
		t.Fatal("first request should pass")
	}
	if limiter.Allow("a") {
		t.Fatal("second request in the same instant should be limited")
	}

	now = now.Add(11 * time.Minute)
	limiter.Allow("b")
	if _, ok := limiter.buckets["a"]; ok {
		t.Fatal("idle bucket should have been swept")
	}
	if !limiter.Allow("a") {
		t.Fatal("request after idle period should pass")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("x") {
			t.Fatal("zero rate should disable limiting")
		}
	}
}

func TestIPRateLimitIgnoresForwardedHeaders(t *testing.T) {
	handler := IPRateLimit(NewRateLimiter(1, 1))(okHandler)

	for i, spoofed := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
		req.RemoteAddr = "203.0.113.7:41000"
		req.Header.Set("X-Forwarded-For", spoofed)
		req.Header.Set("X-Real-IP", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		want := http.StatusOK
		if i > 0 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("request %d: expected %d got %d", i, want, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
	req.RemoteAddr = "198.51.100.9:41000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("distinct remote address should have its own bucket, got %d", rec.Code)
	}
}
