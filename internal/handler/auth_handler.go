package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/skillcert-api/internal/handler/dto"
	"github.com/yourusername/skillcert-api/internal/service"
)

// AuthUseCase - вход по паролю
type AuthUseCase interface {
	Login(username, password string) (*service.LoginResult, error)
}

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	auth AuthUseCase
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(auth AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login выдает токен доступа
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"token_type":   result.TokenType,
		"expires_at":   result.ExpiresAt,
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
			"role":     result.User.Role,
		},
	})
}
