package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fidelidade-next/internal/authz"
	"github.com/fidelidade-next/internal/cache"
	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func TestCORSPolicyAllowOrigin(t *testing.T) {
	cases := []struct {
		name        string
		cfg         config.CORSConfig
		origin      string
		wantAllowed string
	}{
		{"wildcard", config.CORSConfig{AllowedOrigins: []string{"*"}}, "https://example.com", "*"},
		{"wildcard with credentials echoes", config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, "https://example.com", "https://example.com"},
		{"empty list behaves as wildcard", config.CORSConfig{}, "https://example.com", "*"},
		{"allow list match", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com", "https://b.example.com"}}, "https://A.example.com", "https://A.example.com"},
		{"allow list miss", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, "https://x.example.com", ""},
		{"allow list without origin", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newCORSPolicy(tc.cfg).allowOrigin(tc.origin); got != tc.wantAllowed {
				t.Fatalf("allowOrigin want %q got %q", tc.wantAllowed, got)
			}
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 600}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow origin want echoed origin got %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("max age want 600 got %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), requestIDHeader) {
		t.Fatalf("request id header should be exposed")
	}
}

func TestRequestIDMiddlewareRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, raw := range []string{strings.Repeat("a", requestIDMaxLength+1), "has space"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIDHeader, raw)
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got == raw || got == "" {
			t.Fatalf("malformed request id %q should be replaced, got %q", raw, got)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": response.RequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type stubTokenParser struct {
	claims *service.JWTClaims
	state  *cache.ProfileAuthState
	err    error
}

func (s stubTokenParser) ParseJWT(tokenString string) (*service.JWTClaims, error) {
	if tokenString != "good-token" {
		return nil, fmt.Errorf("bad token")
	}
	return s.claims, nil
}

func (s stubTokenParser) ResolveAuthState(ctx context.Context, profileID string) (*cache.ProfileAuthState, error) {
	return s.state, s.err
}

func decodeStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func newJWTTestRouter(parser TokenParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(parser))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status_code": 0,
			"profile_id":  c.GetString(handlershared.ContextKeyProfileID),
			"role":        c.GetString(handlershared.ContextKeyRole),
		})
	})
	return r
}

func serveWithToken(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	issuedAt := time.Now().Add(-time.Minute).Truncate(time.Second)
	claims := &service.JWTClaims{
		ProfileID:    "p-1",
		Email:        "ana@example.com",
		Role:         constants.RoleCustomer,
		TokenVersion: 2,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	activeState := func() *cache.ProfileAuthState {
		return &cache.ProfileAuthState{
			ProfileID:    "p-1",
			Role:         constants.RoleCustomer,
			Status:       constants.UserStatusActive,
			TokenVersion: 2,
		}
	}

	cases := []struct {
		name     string
		token    string
		mutate   func(state *cache.ProfileAuthState)
		wantCode int
	}{
		{name: "missing header", token: "", wantCode: 401},
		{name: "unparseable token", token: "forged", wantCode: 401},
		{name: "disabled account", token: "good-token", mutate: func(s *cache.ProfileAuthState) { s.Status = constants.UserStatusDisabled }, wantCode: 401},
		{name: "version bumped", token: "good-token", mutate: func(s *cache.ProfileAuthState) { s.TokenVersion = 3 }, wantCode: 401},
		{name: "issued before logout", token: "good-token", mutate: func(s *cache.ProfileAuthState) { s.TokenInvalidBefore = issuedAt.Add(time.Second).Unix() }, wantCode: 401},
		{name: "issued same second as logout", token: "good-token", mutate: func(s *cache.ProfileAuthState) { s.TokenInvalidBefore = issuedAt.Unix() }, wantCode: 0},
		{name: "active session", token: "good-token", wantCode: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := activeState()
			if tc.mutate != nil {
				tc.mutate(state)
			}
			r := newJWTTestRouter(stubTokenParser{claims: claims, state: state})
			w := serveWithToken(r, tc.token)
			if got := decodeStatusCode(t, w); got != tc.wantCode {
				t.Fatalf("status_code want %d got %d body=%s", tc.wantCode, got, w.Body.String())
			}
		})
	}
}

func TestJWTAuthMiddlewareSetsContext(t *testing.T) {
	r := newJWTTestRouter(stubTokenParser{
		claims: &service.JWTClaims{ProfileID: "p-9", Role: constants.RoleMerchant},
		state: &cache.ProfileAuthState{
			ProfileID: "p-9",
			Role:      constants.RoleMerchant,
			Status:    constants.UserStatusActive,
		},
	})
	w := serveWithToken(r, "good-token")
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["profile_id"] != "p-9" || resp["role"] != constants.RoleMerchant {
		t.Fatalf("unexpected context values: %v", resp)
	}
}

func TestJWTAuthMiddlewareUnknownProfile(t *testing.T) {
	r := newJWTTestRouter(stubTokenParser{claims: &service.JWTClaims{ProfileID: "gone"}})
	if got := decodeStatusCode(t, serveWithToken(r, "good-token")); got != 401 {
		t.Fatalf("status_code want 401 got %d", got)
	}
}

func TestRoleGateMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	newRouter := func(role string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(handlershared.ContextKeyRole, role)
			}
			c.Next()
		})
		r.Use(RoleGateMiddleware(authzService))
		ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status_code": 0}) }
		r.GET("/api/v1/store/offers", ok)
		r.POST("/api/v1/merchant/offers", ok)
		r.PATCH("/api/v1/admin/users/:id/status", ok)
		return r
	}

	cases := []struct {
		role     string
		method   string
		path     string
		wantCode int
	}{
		{role: constants.RoleCustomer, method: http.MethodGet, path: "/api/v1/store/offers", wantCode: 0},
		{role: constants.RoleCustomer, method: http.MethodPost, path: "/api/v1/merchant/offers", wantCode: 403},
		{role: constants.RoleMerchant, method: http.MethodPost, path: "/api/v1/merchant/offers", wantCode: 0},
		{role: constants.RoleMerchant, method: http.MethodPatch, path: "/api/v1/admin/users/7/status", wantCode: 403},
		{role: constants.RoleAdmin, method: http.MethodPatch, path: "/api/v1/admin/users/7/status", wantCode: 0},
		{role: "", method: http.MethodGet, path: "/api/v1/store/offers", wantCode: 401},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		newRouter(tc.role).ServeHTTP(w, req)
		if got := decodeStatusCode(t, w); got != tc.wantCode {
			t.Fatalf("%s %s as %q: status_code want %d got %d", tc.method, tc.path, tc.role, tc.wantCode, got)
		}
	}
}

func TestBearerToken(t *testing.T) {
	if _, ok := bearerToken("Token abc"); ok {
		t.Fatalf("non bearer scheme should be rejected")
	}
	if _, ok := bearerToken("Bearer   "); ok {
		t.Fatalf("empty bearer should be rejected")
	}
	if got, ok := bearerToken("Bearer abc"); !ok || got != "abc" {
		t.Fatalf("bearer token want abc got %q", got)
	}
}
