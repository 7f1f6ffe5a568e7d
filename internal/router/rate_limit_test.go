package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":" Ana@Example.com ","password":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "ana@example.com|1.2.3.4" {
		t.Fatalf("key want ana@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Ana@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, raw := range []string{``, `not json`, `{"email":42}`, `{"other":"x"}`} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(raw))
		c.Request.RemoteAddr = "5.6.7.8:1000"
		if key := KeyByIPAndJSONField("email")(c); key != "5.6.7.8" {
			t.Fatalf("body %q: key want ip got %s", raw, key)
		}
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass through, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestRateLimitRuleDecide(t *testing.T) {
	rule := RateLimitRule{WindowSeconds: 300, MaxRequests: 5, BlockSeconds: 900}
	cases := []struct {
		name      string
		count     int64
		ttl       int64
		allowed   bool
		wantRetry int
	}{
		{name: "under limit", count: 3, ttl: 200, allowed: true},
		{name: "at limit", count: 5, ttl: 10, allowed: true},
		{name: "first block", count: 6, ttl: 900, wantRetry: 900},
		{name: "missing ttl uses window", count: 7, ttl: -1, wantRetry: 300},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rule.decide(tc.count, tc.ttl)
			if got.allowed != tc.allowed || got.retryAfter != tc.wantRetry {
				t.Fatalf("decide want allowed=%v retry=%d got %+v", tc.allowed, tc.wantRetry, got)
			}
		})
	}
}

func TestRateLimitRuleKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "9.9.9.9:1"

	rule := RateLimitRule{Prefix: "rl:login"}
	if got := rule.key(c, nil); got != "rl:login:9.9.9.9" {
		t.Fatalf("key want rl:login:9.9.9.9 got %s", got)
	}
	if got := rule.key(c, func(*gin.Context) string { return "custom" }); got != "rl:login:custom" {
		t.Fatalf("key want rl:login:custom got %s", got)
	}
}
