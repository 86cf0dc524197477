package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Используется для маркеров устаревших агрегатов и кеша сводок.
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(keys ...string) error
	Exists(key string) (bool, error)
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
}
