package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v2"

	"github.com/Dosada05/scoreboard/brackets"
	"github.com/Dosada05/scoreboard/config"
	"github.com/Dosada05/scoreboard/db"
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/metrics"
	"github.com/Dosada05/scoreboard/repositories"
	api "github.com/Dosada05/scoreboard/routes"
	"github.com/Dosada05/scoreboard/services"
	"github.com/Dosada05/scoreboard/storage"
	"github.com/Dosada05/scoreboard/utils"
)

const (
	dbConnectTimeout = 5 * time.Second
	shutdownTimeout  = 15 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "scoreboard",
		Usage: "live scoreboard and tournament server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and websocket server",
				Action: serve,
			},
			migrateCommand(),
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("in_memory", cfg.InMemory()),
		slog.Bool("archive", cfg.ArchiveEnabled()),
	)

	var (
		gameRepo    repositories.GameRepository
		historyRepo repositories.HistoryRepository
	)
	if cfg.InMemory() {
		logger.Warn("DATABASE_URL is not set, games and history are kept in memory")
		gameRepo = repositories.NewMemoryGameRepository()
		historyRepo = repositories.NewMemoryHistoryRepository()
	} else {
		dbConn, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer closeDB(dbConn, logger)

		if err := db.MigrateUp(dbConn, logger); err != nil {
			return err
		}
		gameRepo = repositories.NewPostgresGameRepository(dbConn)
		historyRepo = repositories.NewPostgresHistoryRepository(dbConn)
	}
	logger.Info("repositories initialized")

	secret := cfg.JWTSecretKey
	if secret == "" {
		if secret, err = utils.RandomSecret(32); err != nil {
			return err
		}
		logger.Warn("JWT_SECRET_KEY is not set, host tokens will not survive a restart")
	}

	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	archiver := storage.NewNoopArchiver()
	if !r2Config.Empty() {
		uploader, err := storage.NewCloudflareR2Uploader(c.Context, r2Config)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewObjectArchiver(uploader)
		logger.Info("Cloudflare R2 archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	recorder := metrics.NewPrometheusRecorder(nil)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(hubCtx)
	logger.Info("WebSocket Hub started")

	authService := services.NewAuthService(gameRepo, []byte(secret), cfg.TokenTTL)
	gameService := services.NewGameService(gameRepo, historyRepo, authService, archiver, wsHub, recorder, logger)
	historyService := services.NewHistoryService(historyRepo, cfg.HistoryLimit, cfg.LeaderboardTop)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Dependencies{
		Games:          handlers.NewGameHandler(gameService),
		History:        handlers.NewHistoryHandler(historyService),
		Auth:           handlers.NewAuthHandler(authService),
		WebSocket:      handlers.NewWebSocketHandler(wsHub, gameService, recorder, logger, cfg.CORSAllowedOrigins),
		TokenValidator: authService,
		Metrics:        recorder.Handler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("routes configured")

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
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}

	logger.Info("application exited")
	return nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return withDatabase(func(dbConn *sql.DB, logger *slog.Logger) error {
						return db.MigrateUp(dbConn, logger)
					})
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					return withDatabase(func(dbConn *sql.DB, logger *slog.Logger) error {
						return db.MigrateDown(dbConn, c.Int("steps"), logger)
					})
				},
			},
		},
	}
}

func withDatabase(fn func(*sql.DB, *slog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)
	if cfg.InMemory() {
		return errors.New("DATABASE_URL environment variable is not set")
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(dbConn, logger)

	return fn(dbConn, logger)
}

func closeDB(dbConn *sql.DB, logger *slog.Logger) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}
