package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
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
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func envelopeStatusCode(t *testing.T, body []byte) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestAdminJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AdminJWTAuthMiddleware(""))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if code := envelopeStatusCode(t, w.Body.Bytes()); code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func signCustomerToken(t *testing.T, secret string, customerID uint, email string) string {
	t.Helper()
	claims := &service.CustomerJWTClaims{
		CustomerID: customerID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func TestCustomerJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "customer-test-secret"

	r := gin.New()
	r.Use(CustomerJWTAuthMiddleware(secret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"customer_id": c.GetUint("customer_id"),
			"email":       c.GetString("customer_email"),
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signCustomerToken(t, secret, 7, "a@b.com"))
	r.ServeHTTP(w, req)

	var resp struct {
		CustomerID uint   `json:"customer_id"`
		Email      string `json:"email"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.CustomerID != 7 || resp.Email != "a@b.com" {
		t.Fatalf("claims not injected, got %+v", resp)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/me", nil)
	req2.Header.Set("Authorization", "Bearer "+signCustomerToken(t, "wrong-secret", 7, "a@b.com"))
	r.ServeHTTP(w2, req2)
	if code := envelopeStatusCode(t, w2.Body.Bytes()); code != 401 {
		t.Fatalf("bad signature status_code want 401 got %d", code)
	}
}

func TestOptionalCustomerJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "customer-test-secret"

	r := gin.New()
	r.Use(OptionalCustomerJWTMiddleware(secret))
	r.GET("/quote", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customer_id": c.GetUint("customer_id")})
	})

	// 匿名请求放行
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	r.ServeHTTP(w, req)
	var resp struct {
		CustomerID uint `json:"customer_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.CustomerID != 0 {
		t.Fatalf("anonymous customer_id want 0 got %d", resp.CustomerID)
	}

	// 合法令牌注入身份
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/quote", nil)
	req2.Header.Set("Authorization", "Bearer "+signCustomerToken(t, secret, 42, "c@d.com"))
	r.ServeHTTP(w2, req2)
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.CustomerID != 42 {
		t.Fatalf("authed customer_id want 42 got %d", resp.CustomerID)
	}

	// 非法令牌仍然拒绝
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/quote", nil)
	req3.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w3, req3)
	if code := envelopeStatusCode(t, w3.Body.Bytes()); code != 401 {
		t.Fatalf("invalid token status_code want 401 got %d", code)
	}
}

func TestServiceTokenMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ServiceTokenMiddleware("svc-token"))
	r.POST("/internal/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/ping", nil)
	req.Header.Set(serviceTokenHeader, "svc-token")
	r.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("valid token should pass, got %s", w.Body.String())
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/internal/ping", nil)
	req2.Header.Set(serviceTokenHeader, "wrong")
	r.ServeHTTP(w2, req2)
	if code := envelopeStatusCode(t, w2.Body.Bytes()); code != 401 {
		t.Fatalf("wrong token status_code want 401 got %d", code)
	}

	// 未配置令牌时一律拒绝，避免裸奔
	r3 := gin.New()
	r3.Use(ServiceTokenMiddleware(""))
	r3.POST("/internal/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodPost, "/internal/ping", nil)
	r3.ServeHTTP(w3, req3)
	if code := envelopeStatusCode(t, w3.Body.Bytes()); code != 401 {
		t.Fatalf("empty configured token status_code want 401 got %d", code)
	}
}
