package websocket

import "context"

// HubInterface - то, что Manager использует от хаба
type HubInterface interface {
	// SendJSONToUser отправляет структуру JSON всем соединениям пользователя (включая другие инстансы)
	SendJSONToUser(userID string, v interface{}) error

	// SendToUser отправляет байтовое сообщение локальным соединениям пользователя
	SendToUser(userID string, message []byte) bool

	// ClientCount возвращает количество подключенных клиентов
	ClientCount() int
}

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(channel string, message []byte) error

	// Subscribe подписывается на указанный канал и возвращает канал для сообщений
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Close закрывает все соединения и освобождает ресурсы
	Close() error
}
