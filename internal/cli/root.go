// Package cli реализует административную утилиту skillsctl.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/yourusername/skillcert-api/internal/config"
	"github.com/yourusername/skillcert-api/internal/domain/repository"
	redisRepo "github.com/yourusername/skillcert-api/internal/repository/redis"
	"github.com/yourusername/skillcert-api/pkg/database"
)

var rootCmd = &cobra.Command{
	Use:          "skillsctl",
	Short:        "Administrative tool for the skills certification API",
	SilenceUsage: true,
}

// Execute запускает корневую команду
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides CONFIG_PATH env var)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(certCmd)
}

// resolveConfigPath: флаг --config, затем CONFIG_PATH, затем путь по умолчанию
func resolveConfigPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// openCache возвращает nil, если Redis недоступен: команды работают и без маркеров устаревания
func openCache(cfg *config.Config) repository.CacheRepository {
	client, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("[skillsctl] Redis недоступен, маркеры устаревания не обновляются: %v", err)
		return nil
	}
	cache, err := redisRepo.NewCacheRepo(client, cfg.Redis.KeyPrefix)
	if err != nil {
		log.Printf("[skillsctl] Не удалось инициализировать кеш: %v", err)
		return nil
	}
	return cache
}
