package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/betting-pool/config"
	"github.com/Dosada05/betting-pool/db"
	"github.com/Dosada05/betting-pool/handlers"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/Dosada05/betting-pool/routes"
	"github.com/Dosada05/betting-pool/services"
	"github.com/Dosada05/betting-pool/storage"
	"github.com/go-chi/chi/v5"
)

const scoreBoardTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	handlers.SetDebug(cfg.Debug)

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbConn.Close()
	logger.Info("database connection established")

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	// Кэш таблицы лидеров
	var cache services.ScoreBoardCache = storage.NoopScoreBoardCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := storage.NewRedisScoreBoardCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, scoreBoardTTL)
		if err != nil {
			logger.Warn("redis unavailable, score board cache disabled", slog.Any("error", err))
		} else {
			defer redisCache.Close()
			cache = redisCache
			logger.Info("score board cache enabled", slog.String("addr", cfg.RedisAddr))
		}
	}

	// Инициализация репозиториев
	txr := repositories.NewPostgresTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	structureRepo := repositories.NewPostgresStructureRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	betRepo := repositories.NewPostgresBetRepository(dbConn)
	positionRepo := repositories.NewPostgresGroupPositionRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	tokenService := services.NewTokenService(cfg.JWTSecretKey, cfg.JWTExpiration, nil)
	authService := services.NewAuthService(txr, userRepo, structureRepo, matchRepo, betRepo, positionRepo, tokenService, cache)
	structureService := services.NewStructureService(structureRepo, matchRepo)
	betService := services.NewBetService(txr, betRepo, matchRepo, positionRepo, structureRepo, cfg.Rules, cfg.LockDatetime, nil)
	resultService := services.NewResultService(txr, userRepo, betRepo, structureRepo, positionRepo, cfg.Rules, cache)
	ruleService := services.NewRuleService(txr, structureRepo, matchRepo, betRepo, positionRepo, cfg.Rules, resultService)
	logger.Info("Services initialized", slog.Time("lock_datetime", cfg.LockDatetime))

	// Инициализация обработчиков HTTP
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Bets:       handlers.NewBetHandler(betService),
		ScoreBets:  handlers.NewScoreBetHandler(betService),
		BinaryBets: handlers.NewBinaryBetHandler(betService),
		Structure:  handlers.NewStructureHandler(structureService),
		Rules:      handlers.NewRuleHandler(ruleService),
		Results:    handlers.NewResultHandler(resultService),
		Health:     handlers.NewHealthHandler(dbConn),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	routes.SetupRoutes(router, authService, h, cfg.AllowedOrigins)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
