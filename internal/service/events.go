package service

import (
	"log"
	"strconv"

	"github.com/yourusername/skillcert-api/internal/websocket"
)

// EventPublisher доставляет события пользователю (реализуется websocket.Manager)
type EventPublisher interface {
	SendEventToUser(userID string, eventType string, data interface{}) error
}

// publishToUser отправляет событие без влияния на основной сценарий
func publishToUser(events EventPublisher, userID uint, eventType string, data interface{}) {
	if events == nil {
		return
	}
	if err := events.SendEventToUser(strconv.FormatUint(uint64(userID), 10), eventType, data); err != nil {
		log.Printf("[Events] Не удалось отправить %s пользователю %d: %v", eventType, userID, err)
	}
}

// Проверка на этапе компиляции
var _ EventPublisher = (*websocket.Manager)(nil)
