package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger проверяет доступность зависимости
type Pinger func(ctx context.Context) error

// HealthHandler отвечает на /health
type HealthHandler struct {
	checks map[string]Pinger
	info   map[string]func() interface{}
}

// NewHealthHandler создает обработчик проверки состояния
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, info: make(map[string]func() interface{})}
}

// AddInfo добавляет в ответ справочный блок, не влияющий на статус
func (h *HealthHandler) AddInfo(name string, fn func() interface{}) {
	h.info[name] = fn
}

// Health возвращает 200, если все зависимости доступны, иначе 503
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(gin.H, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	resp := gin.H{"status": state, "dependencies": deps}
	for name, fn := range h.info {
		resp[name] = fn()
	}
	c.JSON(status, resp)
}
