package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/skillcert-api/internal/config"
	"github.com/yourusername/skillcert-api/internal/handler"
	"github.com/yourusername/skillcert-api/internal/middleware"
	"github.com/yourusername/skillcert-api/internal/policy"
	pgRepo "github.com/yourusername/skillcert-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/skillcert-api/internal/repository/redis"
	"github.com/yourusername/skillcert-api/internal/service"
	ws "github.com/yourusername/skillcert-api/internal/websocket"
	"github.com/yourusername/skillcert-api/pkg/auth"
	"github.com/yourusername/skillcert-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	sqlDB, err := database.GetSQLDB(db)
	if err != nil {
		log.Printf("Failed to get sql.DB: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Redis: маркеры устаревших агрегатов, кэш сводок и rate limiting
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	assessmentRepo := pgRepo.NewAssessmentRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)
	scoreRepo := pgRepo.NewUserScoreRepo(db)
	certRepo := pgRepo.NewCertificationRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient, cfg.Redis.KeyPrefix)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration())
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// --- WebSocket ---
	var pubSubProvider ws.PubSubProvider = &ws.NoOpPubSub{}
	if cfg.WebSocket.Cluster.Enabled {
		log.Println("Инициализация Redis PubSub для кластеризации WebSocket...")
		redisProvider, errProv := ws.NewRedisPubSub(redisClient)
		if errProv != nil {
			log.Printf("Ошибка при создании Redis PubSub провайдера: %v. Кластеризация WS будет неактивна.", errProv)
		} else {
			pubSubProvider = redisProvider
		}
	}

	wsHub := ws.NewHub(cfg.WebSocket.Cluster, pubSubProvider)
	if err := wsHub.Start(); err != nil {
		log.Printf("Failed to start WebSocket hub: %v", err)
		os.Exit(1)
	}
	wsManager := ws.NewManager(wsHub)

	// --- Email ---
	var mailer service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled() {
		resendService, errMail := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if errMail != nil {
			log.Printf("Ошибка инициализации Resend: %v. Письма отправляться не будут.", errMail)
		} else {
			mailer = resendService
		}
	}

	// Инициализируем сервисы
	scoreService := service.NewScoreService(resultRepo, scoreRepo, userRepo, cacheRepo, wsManager, cfg.Scoring.StaleTTL())
	resultService := service.NewResultService(resultRepo, userRepo, assessmentRepo, cacheRepo, scoreService, wsManager)
	certService := service.NewCertificationService(certRepo, resultRepo, userRepo, cacheRepo, wsManager, mailer, cfg.Email.VerifyURL)
	catalogService := service.NewCatalogService(assessmentRepo)
	authService := service.NewAuthService(userRepo, jwtService)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	resultHandler := handler.NewResultHandler(resultService, scoreService)
	certHandler := handler.NewCertificationHandler(certService)
	assessmentHandler := handler.NewAssessmentHandler(catalogService)
	wsHandler := handler.NewWSHandler(wsHub, wsManager, jwtService, scoreService, cfg.Server.AllowedOrigins)
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": sqlDB.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	healthHandler.AddInfo("websocket", func() interface{} {
		metrics := wsManager.GetMetrics()
		metrics["instance_id"] = wsHub.GetInstanceID()
		return metrics
	})

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	limiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode
	router := gin.Default()

	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	{
		api.POST("/auth/login",
			limiter.Limit(middleware.LoginRateLimitConfig(), middleware.ByIPAndPath),
			authHandler.Login)

		// Публичная проверка сертификата
		api.GET("/certifications/verify/:certificate_id",
			limiter.Limit(middleware.VerifyRateLimitConfig(), middleware.ByIPAndPath),
			certHandler.Verify)

		authed := api.Group("")
		authed.Use(authMiddleware.RequireAuth())
		{
			// Результаты. Владелец проверяется в обработчике по user_id из тела.
			authed.POST("/results",
				limiter.Limit(middleware.SubmitRateLimitConfig(), middleware.ByCaller),
				resultHandler.SubmitResult)
			authed.PUT("/results/:id",
				middleware.ExtractUintParam("id", middleware.ParamResultID),
				middleware.RequirePermission(policy.ActionUpdateResult, ""),
				resultHandler.UpdateResult)

			users := authed.Group("/users/:id")
			users.Use(middleware.ExtractUintParam("id", middleware.ParamUserID))
			{
				viewResults := middleware.RequirePermission(policy.ActionViewResults, middleware.ParamUserID)
				users.GET("/results", viewResults, resultHandler.GetUserResults)
				users.GET("/results/export", viewResults, resultHandler.ExportUserResults)
				users.GET("/stats", viewResults, resultHandler.GetUserStats)
				users.GET("/score", viewResults, resultHandler.GetUserScore)
				users.GET("/improvements", viewResults, resultHandler.GetImprovements)

				users.POST("/certifications",
					middleware.RequirePermission(policy.ActionIssueCertification, middleware.ParamUserID),
					certHandler.Generate)
				viewCerts := middleware.RequirePermission(policy.ActionViewCertifications, middleware.ParamUserID)
				users.GET("/certifications", viewCerts, certHandler.History)
				users.GET("/certifications/stats", viewCerts, certHandler.Stats)
			}

			authed.PATCH("/certifications/:id/status",
				middleware.ExtractUintParam("id", middleware.ParamCertificationID),
				middleware.RequirePermission(policy.ActionChangeCertStatus, ""),
				certHandler.ChangeStatus)

			assessments := authed.Group("/assessments/:id")
			assessments.Use(
				middleware.ExtractUintParam("id", middleware.ParamAssessmentID),
				middleware.RequirePermission(policy.ActionTakeAssessment, ""),
			)
			{
				assessments.GET("/start", assessmentHandler.Start)
				assessments.POST("/submit", assessmentHandler.SubmitAnswer)
			}
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	wsHub.Stop()
	if err := pubSubProvider.Close(); err != nil {
		log.Printf("Error closing PubSub provider: %v", err)
	}

	log.Println("Server exited properly")
}
