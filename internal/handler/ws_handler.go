package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/skillcert-api/internal/middleware"
	"github.com/yourusername/skillcert-api/internal/service"
	"github.com/yourusername/skillcert-api/internal/websocket"
)

// Входящие типы сообщений
const wsScoreRequest = "score:get"

// WSHandler обрабатывает WebSocket соединения
type WSHandler struct {
	hub      *websocket.Hub
	manager  *websocket.Manager
	tokens   middleware.TokenParser
	scores   ScoreUseCase
	upgrader gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket.
// allowedOrigins синхронизирован с CORS; пустой Origin (не браузер) разрешен.
func NewWSHandler(
	hub *websocket.Hub,
	manager *websocket.Manager,
	tokens middleware.TokenParser,
	scores ScoreUseCase,
	allowedOrigins []string,
) *WSHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	h := &WSHandler{
		hub:     hub,
		manager: manager,
		tokens:  tokens,
		scores:  scores,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || origins[origin] {
					return true
				}
				log.Printf("[WSHandler] Отклонен origin: %s", origin)
				return false
			},
		},
	}

	h.registerMessageHandlers()
	return h
}

// HandleConnection обрабатывает входящее WebSocket соединение (?token=<access token>)
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token parameter", "error_type": "token_missing"})
		return
	}

	claims, err := h.tokens.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ
		log.Printf("[WSHandler] Ошибка upgrade для пользователя %d: %v", claims.UserID, err)
		return
	}

	client := websocket.NewClient(h.hub, conn, strconv.FormatUint(uint64(claims.UserID), 10))
	client.StartPumps(h.manager.HandleMessage)
}

// registerMessageHandlers регистрирует обработчики входящих сообщений
func (h *WSHandler) registerMessageHandlers() {
	h.manager.RegisterHandler(wsScoreRequest, func(_ json.RawMessage, client *websocket.Client) error {
		userID, err := strconv.ParseUint(client.UserID, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid client user id %q: %w", client.UserID, err)
		}

		score, err := h.scores.GetUserScore(uint(userID))
		if err != nil {
			log.Printf("[WSHandler] Ошибка получения балла пользователя %d: %v", userID, err)
			h.manager.SendErrorToClient(client, "score_unavailable", "Score is not available")
			return nil
		}

		if err := h.manager.SendEventToUser(client.UserID, websocket.SCORE_UPDATED, service.ScoreUpdatedEvent{
			GlobalScore:      score.GlobalScore,
			TotalAssessments: score.TotalAssessments,
		}); err != nil {
			log.Printf("[WSHandler] Ошибка отправки балла пользователю %d: %v", userID, err)
		}
		return nil
	})
}
