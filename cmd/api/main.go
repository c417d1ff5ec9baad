package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/workers"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	serverPort := envOr("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	redisClient, err := cache.NewRedisClient(
		envOr("REDIS_HOST", "localhost"),
		envOr("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		redisDB,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	}

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	if redisClient != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, redisClient)
	}

	logRepo := repository.NewPostgresLogRepository(db)
	userRepo := repository.NewPostgresUserRepository(db.DB)

	engine := analytics.NewEngine(analytics.DefaultConfig())

	gamificationService := services.NewGamificationService(habitRepo, logRepo, userRepo, engine)

	statsWorker := workers.NewStatsWorker(gamificationService)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	statsWorker.Start(workerCtx)

	habitService := services.NewHabitService(habitRepo)
	logService := services.NewLogService(logRepo, habitRepo, statsWorker)
	insightService := services.NewInsightService(habitRepo, logRepo, engine)
	authService := services.NewAuthService(userRepo)

	tokenService := services.NewTokenService(
		jwtSecret,
		envOr("JWT_ISSUER", "kanso-insights-engine"),
		24*time.Hour,
		userRepo,
	)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:         adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:        adapterHTTP.NewHabitHandler(habitService),
		LogHandler:          adapterHTTP.NewLogHandler(logService),
		InsightsHandler:     adapterHTTP.NewInsightsHandler(insightService),
		GamificationHandler: adapterHTTP.NewGamificationHandler(gamificationService),
		TokenService:        tokenService,
		DB:                  db,
		Redis:               redisClient,
		StartTime:           startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Insights Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	workerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
