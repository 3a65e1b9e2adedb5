// Package main is the entry point for the Planwise auth API server.
// Пакет main — точка входа API сервера аутентификации Planwise.
//
// It wires together configuration, logging, telemetry, storage, services
// and the HTTP layer, then runs the server with graceful shutdown.
// Он связывает конфигурацию, логирование, телеметрию, хранилища, сервисы
// и HTTP слой, затем запускает сервер с graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	rediscache "github.com/planwisehq/planwise/internal/adapter/cache/redis"
	"github.com/planwisehq/planwise/internal/adapter/http/handler"
	"github.com/planwisehq/planwise/internal/adapter/http/middleware"
	postgresrepo "github.com/planwisehq/planwise/internal/adapter/repository/postgres"
	"github.com/planwisehq/planwise/internal/config"
	"github.com/planwisehq/planwise/internal/domain"
	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/pkg/telemetry"
	"github.com/planwisehq/planwise/internal/service"
)

func main() {
	// Load configuration / Загружаем конфигурацию
	cfg := config.MustLoad()

	// Initialize logger / Инициализируем логгер
	log := logger.New(logger.Config{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	})
	logger.SetDefault(log)

	log.Info("starting planwise auth service",
		"port", cfg.Server.Port,
		"dev_mode", cfg.DevMode,
	)

	// Initialize OpenTelemetry / Инициализируем OpenTelemetry
	telemetryProvider, err := telemetry.InitTelemetry(context.Background(), telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Telemetry.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal("failed to initialize telemetry", "error", err)
	}

	// Connect to PostgreSQL / Подключаемся к PostgreSQL
	db, err := initDB(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}

	// Run schema migrations / Выполняем миграции схемы
	if err := db.AutoMigrate(&domain.User{}, &domain.Session{}); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	// Connect to Redis / Подключаемся к Redis
	redisClient := initRedis(cfg, log)

	// Build adapters / Собираем адаптеры
	rateLimitCache := rediscache.NewRateLimitCache(redisClient)
	userRepo := postgresrepo.NewUserRepository(db)
	sessionRepo := postgresrepo.NewSessionRepository(db)
	txManager := postgresrepo.NewTransactionManager(db)

	// Build services / Собираем сервисы
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL())
	hasher := service.NewBcryptHasher(0)
	authService := service.NewAuthService(
		userRepo, sessionRepo, txManager, tokenService, hasher, rateLimitCache,
		service.AuthServiceConfig{
			RefreshTTL:       cfg.JWT.RefreshTTL(),
			MaxLoginAttempts: cfg.Lockout.MaxAttempts,
			LockoutDuration:  cfg.Lockout.Duration(),
		},
		log,
	)
	userService := service.NewUserService(userRepo, sessionRepo, log)

	// Periodic expired session sweep / Периодическая очистка истёкших сессий
	sweeper := service.NewSessionSweeper(sessionRepo, cfg.Sweep.Schedule, log)
	if cfg.Sweep.Enabled {
		if err := sweeper.Start(); err != nil {
			log.Fatal("failed to start session sweeper", "error", err)
		}
	}

	// Build handlers / Собираем обработчики
	healthHandler := handler.NewHealthHandler(db, redisClient)
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)

	// Security and rate limiting / Безопасность и ограничение частоты
	securityCfg := middleware.DefaultSecurityConfig()
	if !cfg.DevMode {
		securityCfg = middleware.ProductionSecurityConfig(nil)
	}
	rateLimiter := middleware.NewIPRateLimiter(middleware.DefaultRateLimitConfig())

	router := setupRouter(healthHandler, authHandler, userHandler, tokenService, authService, securityCfg, rateLimiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine / Запускаем сервер в горутине
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	// Wait for interrupt signal / Ждём сигнал прерывания
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}

	// Stop background jobs / Останавливаем фоновые задачи
	sweeper.Stop()

	// Flush telemetry / Сбрасываем телеметрию
	if err := telemetryProvider.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown telemetry", "error", err)
	}

	// Close database connections / Закрываем соединения с БД
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}
	if err := redisClient.Close(); err != nil {
		log.Error("failed to close redis", "error", err)
	}

	log.Info("server stopped")
}

// initDB initializes the PostgreSQL connection via GORM.
// initDB инициализирует подключение к PostgreSQL через GORM.
func initDB(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool / Настраиваем пул соединений
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Verify connection with ping / Проверяем соединение пингом
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}

// initRedis initializes the Redis client connection.
// initRedis инициализирует подключение клиента Redis.
func initRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Verify connection / Проверяем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatal("failed to connect to Redis", "error", err)
	}
	cancel()

	log.Info("redis connection established")
	return client
}

// setupRouter configures the Gin router with all routes and middleware.
// setupRouter настраивает роутер Gin со всеми маршрутами и middleware.
//
// Authentication is enforced globally: every route is private unless it
// appears on the guard's public allow-list.
// Аутентификация применяется глобально: каждый маршрут приватен, если он
// не входит в публичный список guard'а.
func setupRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	tokens *service.TokenService,
	authSvc *service.AuthService,
	securityCfg middleware.SecurityConfig,
	rateLimiter *middleware.IPRateLimiter,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Only trust localhost proxies by default. Add your load balancer IPs in production.
	// По умолчанию доверяем только localhost прокси. Добавьте IP балансировщика в продакшене.
	if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		logger.Default().Error("failed to set trusted proxies", "error", err)
	}

	// Global middleware / Глобальные middleware
	router.Use(gin.Recovery())                              // Panic recovery / Восстановление после паники
	router.Use(middleware.RequestID())                      // Request ID / ID запроса
	router.Use(middleware.SecurityHeaders(securityCfg))     // Security headers / Заголовки безопасности
	router.Use(middleware.CORS(securityCfg))                // CORS / Кросс-доменные запросы
	router.Use(middleware.RateLimitMiddleware(rateLimiter)) // Global rate limiting / Глобальное ограничение частоты
	router.Use(middleware.Metrics())                        // Prometheus metrics / Метрики Prometheus
	router.Use(requestLogger())                             // Request logging / Логирование запросов
	router.Use(middleware.GlobalAuthGuard(tokens, authSvc)) // Private-by-default auth / Аутентификация по умолчанию

	// Health check endpoints for Kubernetes probes
	// Эндпоинты проверки здоровья для Kubernetes проб
	router.GET("/health", healthHandler.Health)
	router.GET("/health/live", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)

	// Metrics endpoint for Prometheus / Эндпоинт метрик для Prometheus
	handler.RegisterMetrics(router)

	// Swagger documentation / Документация Swagger
	handler.RegisterSwagger(router)

	api := router.Group("/api/v1")

	// Authentication endpoints / Эндпоинты аутентификации
	auth := api.Group("/auth")
	// Register and login carry stricter rate limiting to slow down brute-force
	// and mass account creation.
	// Register и login имеют более строгий лимит для защиты от brute-force
	// и массового создания аккаунтов.
	auth.POST("/register", middleware.LoginRateLimitMiddleware(rateLimiter), middleware.NoCache(), authHandler.Register)
	auth.POST("/login", middleware.LoginRateLimitMiddleware(rateLimiter), middleware.NoCache(), authHandler.Login)
	auth.POST("/refresh", middleware.NoCache(), authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout) // Idempotent, always succeeds / Идемпотентно, всегда успешно
	auth.GET("/me", authHandler.Me)

	// User administration endpoints / Эндпоинты администрирования пользователей
	users := api.Group("/admin/users")
	users.Use(middleware.RequireRole(domain.RoleAdmin))
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PATCH("/:id/role", userHandler.UpdateRole)
	users.POST("/:id/deactivate", userHandler.Deactivate)

	return router
}

// requestLogger returns a middleware that logs HTTP requests.
// requestLogger возвращает middleware, которое логирует HTTP запросы.
func requestLogger() gin.HandlerFunc {
	log := logger.Default()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		// Log after request completion / Логируем после завершения запроса
		log.LogRequest(
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}

// getEnv returns environment variable value or default if not set.
// getEnv возвращает значение переменной окружения или значение по умолчанию.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
