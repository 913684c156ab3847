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

	"github.com/courtside/pickleball-league/config"
	"github.com/courtside/pickleball-league/db"
	"github.com/courtside/pickleball-league/display"
	"github.com/courtside/pickleball-league/events"
	"github.com/courtside/pickleball-league/handlers"
	"github.com/courtside/pickleball-league/repositories"
	api "github.com/courtside/pickleball-league/routes"
	"github.com/courtside/pickleball-league/services"
	"github.com/courtside/pickleball-league/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Шина событий (Redis pub/sub): запись в БД тянет обновление табло.
	bus, err := events.NewBus(cfg.RedisAddr, cfg.RedisPassword, logger)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("failed to close event bus", slog.Any("error", err))
		}
	}()
	logger.Info("event bus connected", slog.String("addr", cfg.RedisAddr))

	// Инициализация WebSocket Hub
	wsHub := display.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	displayRepo := repositories.NewPostgresDisplaySelectionRepository(dbConn)
	mediaRepo := repositories.NewPostgresMediaRepository(dbConn)
	sponsorRepo := repositories.NewPostgresSponsorRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	playerService := services.NewPlayerService(playerRepo, cloudflareUploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, cloudflareUploader, logger)
	matchService := services.NewMatchService(matchRepo, tournamentRepo, bus, logger)
	displayService := services.NewDisplayService(displayRepo, tournamentRepo, bus, logger)
	mediaService := services.NewMediaService(mediaRepo, tournamentRepo, cloudflareUploader, bus, logger)
	sponsorService := services.NewSponsorService(sponsorRepo, cloudflareUploader, bus, logger)
	logger.Info("services initialized")

	// Менеджер табло: один движок на турнир и игровой день.
	displayLoader := services.NewDisplayLoader(matchRepo, displayRepo, mediaRepo, sponsorRepo, cloudflareUploader)
	manager := display.NewManager(displayLoader, matchService, wsHub, logger)
	defer manager.Close()

	// События шины раздаются движкам по виду изменения.
	busCtx, cancelBus := context.WithCancel(context.Background())
	defer cancelBus()
	bus.Subscribe(busCtx, func(ev events.Event) {
		switch ev.Kind {
		case events.KindMatches, events.KindSelection:
			manager.Refresh(busCtx, ev.TournamentID, ev.DisplayDate, string(ev.Kind))
		case events.KindMedia:
			manager.RefreshMediaAll(busCtx, ev.TournamentID)
		case events.KindSponsors:
			manager.RefreshSponsorsAll(busCtx)
		default:
			logger.Warn("unknown event kind", slog.String("kind", string(ev.Kind)))
		}
	})
	logger.Info("event subscription started")

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Player:     handlers.NewPlayerHandler(playerService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Match:      handlers.NewMatchHandler(matchService),
		Display:    handlers.NewDisplayHandler(displayService),
		Media:      handlers.NewMediaHandler(mediaService),
		Sponsor:    handlers.NewSponsorHandler(sponsorService),
		Scoreboard: handlers.NewScoreboardHandler(manager),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, manager, logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, cfg.JWTSecretKey)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
		} else {
			logger.Info("server stopped gracefully")
		}
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
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
