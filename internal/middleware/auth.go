package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"ourxmas-backend/internal/config"
	"ourxmas-backend/internal/models"
)

const AdminSubjectKey = "admin_subject"

func unauthorized(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: code, Message: msg})
}

// AdminAuth guards the transaction query endpoints with an HS256 bearer
// token. With no ADMIN_JWT_SECRET configured it lets every request through.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminJWTSecret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "unauthorized", "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "unauthorized", "invalid authorization header format")
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.AdminJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			msg := "invalid token"
			if err != nil && strings.Contains(err.Error(), "token is expired") {
				msg = "token has expired"
			}
			unauthorized(c, "unauthorized", msg)
			return
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set(AdminSubjectKey, sub)
		}
		c.Next()
	}
}

// SepayAPIKey checks the "Authorization: Apikey <key>" header Sepay sends
// with every webhook.
func SepayAPIKey(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.SepayAPIKey == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: "webhook API key not configured",
			})
			return
		}

		key, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Apikey ")
		if !ok {
			unauthorized(c, "unauthorized", "Invalid authorization header format")
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(key)), []byte(cfg.SepayAPIKey)) != 1 {
			unauthorized(c, "unauthorized", "Invalid API key")
			return
		}
		c.Next()
	}
}
