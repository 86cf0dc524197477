package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandlerFunc обрабатывает данные входящего события определенного типа
type HandlerFunc func(data json.RawMessage, client *Client) error

// Manager маршрутизирует входящие сообщения и отправляет события пользователям
type Manager struct {
	hub HubInterface

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewManager создает новый менеджер WebSocket
func NewManager(hub HubInterface) *Manager {
	m := &Manager{
		hub:      hub,
		handlers: make(map[string]HandlerFunc),
	}
	m.RegisterHandler(PING, func(_ json.RawMessage, client *Client) error {
		m.sendToClient(client, Event{Type: PONG, Data: nil})
		return nil
	})
	return m
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventType] = handler
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event inboundEvent
	if err := json.Unmarshal(message, &event); err != nil {
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	m.mu.RLock()
	handler, ok := m.handlers[event.Type]
	m.mu.RUnlock()
	if !ok {
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil
	}

	return handler(event.Data, client)
}

// SendErrorToClient отправляет сообщение об ошибке в конкретное соединение
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	m.sendToClient(client, Event{
		Type: SERVER_ERROR,
		Data: map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func (m *Manager) sendToClient(client *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WebSocketManager] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}
	if !client.Send(data) {
		log.Printf("[WebSocketManager] Не удалось отправить %s клиенту %s", event.Type, client.UserID)
	}
}

// SendEventToUser отправляет событие всем соединениям пользователя
func (m *Manager) SendEventToUser(userID string, eventType string, data interface{}) error {
	return m.hub.SendJSONToUser(userID, Event{Type: eventType, Data: data})
}

// GetMetrics возвращает текущие метрики WebSocket-подсистемы
func (m *Manager) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"client_count": m.hub.ClientCount(),
	}
}
