package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"ourxmas-backend/internal/config"
	"ourxmas-backend/internal/middleware"
)

const adminSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func guardedRouter(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(h)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func get(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return s
}

func TestAdminAuth_DisabledWithoutSecret(t *testing.T) {
	router := guardedRouter(middleware.AdminAuth(&config.Config{}))
	assert.Equal(t, http.StatusOK, get(router, "").Code)
}

func TestAdminAuth_NoToken(t *testing.T) {
	router := guardedRouter(middleware.AdminAuth(&config.Config{AdminJWTSecret: adminSecret}))
	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
}

func TestAdminAuth_InvalidToken(t *testing.T) {
	router := guardedRouter(middleware.AdminAuth(&config.Config{AdminJWTSecret: adminSecret}))

	assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer invalid-token").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer "+signed(t, "other-secret", jwt.MapClaims{"sub": "ops"})).Code)
}

func TestAdminAuth_ExpiredToken(t *testing.T) {
	router := guardedRouter(middleware.AdminAuth(&config.Config{AdminJWTSecret: adminSecret}))
	token := signed(t, adminSecret, jwt.MapClaims{"sub": "ops", "exp": time.Now().Add(-time.Hour).Unix()})

	w := get(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAdminAuth_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AdminJWTSecret: adminSecret}

	router := gin.New()
	router.Use(middleware.AdminAuth(cfg))
	router.GET("/test", func(c *gin.Context) {
		sub, exists := c.Get(middleware.AdminSubjectKey)
		assert.True(t, exists)
		assert.Equal(t, "ops", sub)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, get(router, "Bearer "+signed(t, adminSecret, jwt.MapClaims{"sub": "ops"})).Code)
}

func TestSepayAPIKey(t *testing.T) {
	router := guardedRouter(middleware.SepayAPIKey(&config.Config{SepayAPIKey: "sk_live_123"}))

	tests := []struct {
		header string
		want   int
	}{
		{"Apikey sk_live_123", http.StatusOK},
		{"Apikey wrong", http.StatusUnauthorized},
		{"Bearer sk_live_123", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, get(router, tt.header).Code)
		})
	}
}

func TestSepayAPIKey_NotConfigured(t *testing.T) {
	router := guardedRouter(middleware.SepayAPIKey(&config.Config{}))
	assert.Equal(t, http.StatusInternalServerError, get(router, "Apikey anything").Code)
}
