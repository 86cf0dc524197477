package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/skillcert-api/internal/config"
)

// Hub хранит соединения пользователей этого инстанса.
// У одного пользователя может быть несколько соединений (вкладки, устройства).
// В кластерном режиме сообщения для пользователя дублируются в Redis,
// чтобы их получили соединения на других инстансах.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	cluster  config.ClusterConfig
	provider PubSubProvider

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub создает хаб. provider может быть nil, тогда используется NoOpPubSub.
func NewHub(cfg config.ClusterConfig, provider PubSubProvider) *Hub {
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	if provider == nil {
		provider = &NoOpPubSub{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		cluster:  cfg,
		provider: provider,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// GetInstanceID возвращает ID этого инстанса
func (h *Hub) GetInstanceID() string {
	return h.cluster.InstanceID
}

// Start запускает прием сообщений из кластера
func (h *Hub) Start() error {
	if !h.cluster.Enabled {
		log.Println("[Hub] Кластерный режим отключен")
		return nil
	}

	msgCh, err := h.provider.Subscribe(h.ctx, h.cluster.DirectChannel)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.cluster.DirectChannel, err)
	}

	log.Printf("[Hub] Кластерный режим, instance=%s channel=%s", h.cluster.InstanceID, h.cluster.DirectChannel)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.consumeCluster(msgCh)
	}()
	return nil
}

// Stop останавливает прием сообщений кластера и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.CloseSend()
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) consumeCluster(msgCh <-chan []byte) {
	for {
		select {
		case <-h.ctx.Done():
			return
		case data, ok := <-msgCh:
			if !ok {
				return
			}
			h.handleClusterMessage(data)
		}
	}
}

func (h *Hub) handleClusterMessage(data []byte) {
	var msg ClusterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[Hub] Ошибка десериализации сообщения кластера: %v", err)
		return
	}

	// свои сообщения уже доставлены локально
	if msg.InstanceID == h.cluster.InstanceID {
		return
	}
	if msg.MessageType != clusterDirect || msg.RecipientID == "" {
		return
	}
	h.SendToUser(msg.RecipientID, msg.Payload)
}

// Register добавляет клиента
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	log.Printf("[Hub] Клиент подключен: user=%s conn=%s", c.UserID, c.ConnectionID)
}

// Unregister удаляет клиента и закрывает его канал отправки
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	c.CloseSend()
	log.Printf("[Hub] Клиент отключен: user=%s conn=%s", c.UserID, c.ConnectionID)
}

// SendToUser отправляет сообщение всем локальным соединениям пользователя.
// Возвращает true, если хотя бы одно соединение приняло сообщение.
func (h *Hub) SendToUser(userID string, message []byte) bool {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := false
	var slow []*Client
	for _, c := range targets {
		if c.Send(message) {
			delivered = true
			continue
		}
		if c.incrementBufferWarningCount() >= maxBufferWarnings {
			slow = append(slow, c)
		}
	}

	for _, c := range slow {
		log.Printf("[Hub] Буфер клиента переполнен %d раз, отключаем: user=%s conn=%s", maxBufferWarnings, c.UserID, c.ConnectionID)
		h.Unregister(c)
	}
	return delivered
}

// SendJSONToUser сериализует v и отправляет пользователю на всех инстансах
func (h *Hub) SendJSONToUser(userID string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message for user %s: %w", userID, err)
	}

	h.SendToUser(userID, payload)

	if !h.cluster.Enabled {
		return nil
	}

	data, err := json.Marshal(ClusterMessage{
		MessageType: clusterDirect,
		RecipientID: userID,
		InstanceID:  h.cluster.InstanceID,
		Payload:     payload,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal cluster message: %w", err)
	}
	return h.provider.Publish(h.cluster.DirectChannel, data)
}

// ClientCount возвращает количество локальных соединений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
