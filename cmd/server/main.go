// Package main implements the entry point for the muse API server,
// which orchestrates generative content requests (text, images,
// structured documents, and video) against Google's Gemini API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/museworks/muse-api/internal/artifact"
	"github.com/museworks/muse-api/internal/config"
	"github.com/museworks/muse-api/internal/generation"
	"github.com/museworks/muse-api/internal/platform/gemini"
	"github.com/museworks/muse-api/internal/platform/logger"
	"github.com/museworks/muse-api/internal/platform/postgres"
	"github.com/museworks/muse-api/internal/service"
	"github.com/museworks/muse-api/internal/service/auth"
	"github.com/museworks/muse-api/internal/task"
	"github.com/museworks/muse-api/migrations"
)

// application bundles the initialized dependencies of the server.
type application struct {
	config     *config.Config
	logger     *slog.Logger
	db         *sql.DB
	jwtService auth.JWTService
	artifacts  artifact.Store
	genService *service.GenerationService
	runner     *task.Runner
}

func main() {
	app, err := initializeApp(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and wires up all application
// components in dependency order.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	provider, err := gemini.NewProvider(ctx, gemini.Config{
		APIKey:         cfg.Provider.GeminiAPIKey,
		TextModel:      cfg.Provider.TextModel,
		ImageModel:     cfg.Provider.ImageModel,
		ImageEditModel: cfg.Provider.ImageEditModel,
		VideoModel:     cfg.Provider.VideoModel,
	}, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini provider: %w", err)
	}

	artifacts := artifact.NewMemoryStore()

	dispatcher := generation.NewDispatcher(provider, artifacts, generation.PollerConfig{
		Interval:    time.Duration(cfg.Provider.PollIntervalSeconds) * time.Second,
		MaxAttempts: cfg.Provider.MaxPollAttempts,
	}, appLogger)

	genStore := postgres.NewGenerationStore(db, appLogger)

	// Fail anything left mid-flight by a previous unclean shutdown.
	if err := task.RecoverInterrupted(ctx, genStore, appLogger); err != nil {
		return nil, err
	}

	runner := task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, appLogger)
	runner.Start()

	genService, err := service.NewGenerationService(genStore, dispatcher, runner, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	return &application{
		config:     cfg,
		logger:     appLogger,
		db:         db,
		jwtService: jwtService,
		artifacts:  artifacts,
		genService: genService,
		runner:     runner,
	}, nil
}

// openDatabase connects to postgres through the pgx stdlib driver and
// verifies the connection.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies the embedded goose migrations.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("database migrations applied")
	return nil
}

// cleanup releases resources during shutdown.
func (app *application) cleanup() {
	app.runner.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}
