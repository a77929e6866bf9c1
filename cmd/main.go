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

	_ "github.com/lib/pq"

	"github.com/nexus-arena/backend/brackets"
	"github.com/nexus-arena/backend/config"
	"github.com/nexus-arena/backend/db"
	"github.com/nexus-arena/backend/handlers"
	"github.com/nexus-arena/backend/middleware"
	"github.com/nexus-arena/backend/repositories"
	"github.com/nexus-arena/backend/routes"
	"github.com/nexus-arena/backend/services"
	"github.com/nexus-arena/backend/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Banner storage is optional: without R2 credentials the API still runs,
	// and banner uploads report the storage as unavailable.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
	} else {
		logger.Warn("R2 credentials not configured, banner uploads disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	txManager := repositories.NewSQLTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	matchPlayerRepo := repositories.NewPostgresMatchPlayerRepository(dbConn)

	authService := services.NewAuthService(userRepo, playerRepo)
	playerService := services.NewPlayerService(playerRepo, matchRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, matchRepo, uploader, logger)
	matchService := services.NewMatchService(matchRepo, tournamentRepo, wsHub, logger)
	fixtureService := services.NewFixtureService(txManager, tournamentRepo, matchRepo, logger)
	resultService := services.NewResultService(txManager, matchRepo, matchPlayerRepo, playerRepo, wsHub, logger)
	leaderboardService := services.NewLeaderboardService(playerRepo)

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey, userRepo)

	router := routes.InitRoutes(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.TokenLifetime),
		Tournament:  handlers.NewTournamentHandler(tournamentService, fixtureService),
		Match:       handlers.NewMatchHandler(matchService),
		Referee:     handlers.NewRefereeHandler(matchService, resultService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Player:      handlers.NewPlayerHandler(playerService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub),
	}, authenticator)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
