package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/skillcert-api/internal/policy"
	"github.com/yourusername/skillcert-api/pkg/auth"
)

// Ключи контекста Gin
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextEmail  = "email"
)

// TokenParser проверяет токен доступа (реализуется auth.JWTService)
type TokenParser interface {
	ParseToken(tokenString string) (*auth.JWTCustomClaims, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	tokens TokenParser
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth проверяет Bearer-токен и кладет user_id и role в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		// Проверяем формат заголовка Bearer {token}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// RequirePermission проверяет роль по policy.Allow.
// ownerParam - имя контекстного ключа с ID владельца ресурса (пусто, если ресурс не принадлежит пользователю).
func RequirePermission(action policy.Action, ownerParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := c.Get(ContextUserID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
			return
		}
		role := c.GetString(ContextRole)

		isOwner := false
		if ownerParam != "" {
			if ownerID, exists := c.Get(ownerParam); exists {
				isOwner = ownerID == callerID
			}
		}

		if !policy.Allow(role, action, isOwner) {
			log.Printf("[AuthMiddleware] Доступ запрещен: user=%v role=%s action=%s owner=%t", callerID, role, action, isOwner)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "error_type": "forbidden"})
			return
		}
		c.Next()
	}
}

// CallerID возвращает ID аутентифицированного пользователя из контекста
func CallerID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
