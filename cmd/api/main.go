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
	"github.com/yourusername/quiz-academy/internal/config"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
	"github.com/yourusername/quiz-academy/internal/handler"
	"github.com/yourusername/quiz-academy/internal/middleware"
	pgRepo "github.com/yourusername/quiz-academy/internal/repository/postgres"
	redisRepo "github.com/yourusername/quiz-academy/internal/repository/redis"
	"github.com/yourusername/quiz-academy/internal/service"
	ws "github.com/yourusername/quiz-academy/internal/websocket"
	"github.com/yourusername/quiz-academy/pkg/auth"
	"github.com/yourusername/quiz-academy/pkg/database"
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

	// Создаем контекст с отменой для корректного завершения работы горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к базе данных (postgres или sqlite)
	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Redis необязателен: без него отключаются отзыв токенов, rate limiting и кеш погоды.
	// Интерфейсные переменные остаются nil, а не типизированным nil-указателем.
	var cacheRepo repository.CacheRepository
	if cfg.Redis.RedisEnabled() {
		redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Println("Successfully connected to Redis")

		redisCache, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		cacheRepo = redisCache
	} else {
		log.Println("Redis не настроен: отзыв токенов, rate limiting и кеш погоды отключены")
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	scoreRepo := pgRepo.NewScoreRepo(db)
	transactor := pgRepo.NewTransactor(db)

	if cfg.Quiz.SeedSamples {
		if _, err := service.SeedSampleQuestions(ctx, questionRepo); err != nil {
			log.Printf("Failed to seed sample questions: %v", err)
			os.Exit(1)
		}
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cacheRepo)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// --- Инициализация WebSocket ---
	wsHub := ws.NewHub()
	go wsHub.Run()
	wsManager := ws.NewManager(wsHub)

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	userService := service.NewUserService(userRepo, cfg.Quiz.LeaderboardLimit)
	quizService := service.NewQuizService(questionRepo, userRepo, scoreRepo, transactor)
	quizService.SetLeaderboardNotifier(service.NewLeaderboardBroadcaster(userService, wsManager))
	weatherService := service.NewWeatherService(cfg.Weather, cacheRepo)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, jwtService, isProduction)
	quizHandler := handler.NewQuizHandler(quizService)
	userHandler := handler.NewUserHandler(userService)
	weatherHandler := handler.NewWeatherHandler(weatherService)
	wsHandler := handler.NewWSHandler(wsHub, wsManager, userService, cfg.CORS.AllowOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(cacheRepo)

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
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
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Register)
			authGroup.POST("/login", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Login)
			authGroup.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
		}

		// Пользователи
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", authHandler.GetMe)
			users.DELETE("/me", authHandler.DeleteMe)
			users.GET("/me/score-history", quizHandler.GetScoreHistory)
		}

		// Викторина
		quiz := api.Group("/quiz")
		{
			quiz.GET("/questions", quizHandler.ListQuestions)

			authedQuiz := quiz.Group("")
			authedQuiz.Use(authMiddleware.RequireAuth())
			{
				authedQuiz.GET("/next-question", quizHandler.GetNextQuestion)
				authedQuiz.POST("/submit-answer", rateLimiter.Limit(middleware.QuizRateLimitConfig()), quizHandler.SubmitAnswer)
			}
		}

		// Лидерборд (публичный маршрут)
		leaderboard := api.Group("/leaderboard")
		leaderboard.Use(middleware.ExtractIntQuery("limit", handler.LeaderboardLimitKey, 0))
		{
			leaderboard.GET("", userHandler.GetLeaderboard)
			leaderboard.GET("/export", userHandler.ExportLeaderboard)
		}

		// Виджет погоды
		api.GET("/weather", rateLimiter.Limit(middleware.WeatherRateLimitConfig()), weatherHandler.GetWeather)
	}

	// WebSocket маршрут живого лидерборда
	router.GET("/ws/leaderboard", authMiddleware.OptionalAuth(), wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
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

	cancel()
	wsHub.Close()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if sqlDB, err := database.GetSQLDB(db); err == nil {
		sqlDB.Close()
	}

	log.Println("Server exited properly")
}
