package websocket

// События, которые сервер отправляет пользователю
const (
	// RESULT_RECORDED - сохранен результат попытки
	RESULT_RECORDED = "RESULT_RECORDED"

	// SCORE_UPDATED - пересчитан глобальный балл
	SCORE_UPDATED = "SCORE_UPDATED"

	// CERTIFICATION_ISSUED - выдан сертификат
	CERTIFICATION_ISSUED = "CERTIFICATION_ISSUED"
)

// Служебные типы сообщений
const (
	// PING отправляет клиент, сервер отвечает PONG
	PING = "ping"
	PONG = "pong"

	// SERVER_ERROR - ошибка обработки сообщения клиента
	SERVER_ERROR = "server:error"
)

// Типы сообщений кластера
const (
	clusterDirect = "direct"
)
