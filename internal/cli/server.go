package cli

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

	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/config"
	"vocab-quiz-service/internal/infra/file"
	"vocab-quiz-service/internal/infra/memory"
	pgstore "vocab-quiz-service/internal/infra/postgres"
	infraredis "vocab-quiz-service/internal/infra/redis"
	"vocab-quiz-service/internal/infra/sheets"
	transport "vocab-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 30*time.Minute)

	loader, closeLoader, err := newDatasetLoader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLoader()

	datasetTTL := config.TTLDuration(cfg.Dataset.TTL, time.Hour)
	var datasets app.DatasetRepository
	if redisClient != nil {
		datasets = infraredis.NewDatasetRepository(redisClient, loader, datasetTTL)
	} else {
		datasets = memory.NewDatasetRepository(loader, datasetTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore(sessionTTL)
	}
	service := app.NewQuizService(store, datasets, cfg.Quiz.Users, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, logger, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting vocabulary quiz service",
			slog.String("port", finalPort),
			slog.String("dataset_source", cfg.Dataset.Source),
			slog.Bool("redis", redisClient != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newDatasetLoader picks the word-list source named by dataset.source.
func newDatasetLoader(ctx context.Context, cfg config.Config) (memory.DatasetLoader, func(), error) {
	noop := func() {}
	switch cfg.Dataset.Source {
	case config.SourceSheets:
		if cfg.Dataset.SheetID == "" && cfg.Dataset.URLTemplate == "" {
			return nil, noop, fmt.Errorf("dataset.sheet_id or dataset.url_template is required for the sheets source")
		}
		client := &http.Client{Timeout: config.TTLDuration(cfg.Dataset.Timeout, 15*time.Second)}
		return sheets.NewLoader(client, cfg.Dataset.SheetID, cfg.Dataset.URLTemplate), noop, nil
	case config.SourcePostgres:
		if cfg.Postgres.URL == "" {
			return nil, noop, fmt.Errorf("postgres.url is required for the postgres source")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, noop, err
		}
		return pgstore.NewDatasetLoader(pool), pool.Close, nil
	case config.SourceFile:
		if cfg.Dataset.Dir == "" {
			return nil, noop, fmt.Errorf("dataset.dir is required for the file source")
		}
		return file.NewLoader(cfg.Dataset.Dir), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}
