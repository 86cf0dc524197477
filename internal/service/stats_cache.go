package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/skillcert-api/internal/domain/repository"
	apperrors "github.com/yourusername/skillcert-api/internal/pkg/errors"
)

const (
	userStatsKeyFmt = "stats:results:%d"
	certStatsKeyFmt = "stats:certifications:%d"

	// statsCacheTTL ограничивает устаревание сводки, если сброс ключа не удался
	statsCacheTTL = 5 * time.Minute
)

func userStatsKey(userID uint) string {
	return fmt.Sprintf(userStatsKeyFmt, userID)
}

func certStatsKey(userID uint) string {
	return fmt.Sprintf(certStatsKeyFmt, userID)
}

// loadCachedStats читает сводку из кеша. false при промахе, ошибке или отключенном кеше.
func loadCachedStats(cache repository.CacheRepository, key string, dest interface{}) bool {
	if cache == nil {
		return false
	}
	err := cache.GetJSON(key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[StatsCache] Ошибка чтения %s, считаем заново: %v", key, err)
	}
	return false
}

func storeCachedStats(cache repository.CacheRepository, key string, value interface{}) {
	if cache == nil {
		return
	}
	if err := cache.SetJSON(key, value, statsCacheTTL); err != nil {
		log.Printf("[StatsCache] Не удалось сохранить %s: %v", key, err)
	}
}

// invalidateStats сбрасывает сводку после изменения исходных данных
func invalidateStats(cache repository.CacheRepository, key string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(key); err != nil {
		log.Printf("[StatsCache] Не удалось сбросить %s: %v", key, err)
	}
}
