package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"vocab-quiz-service/internal/config"
	"vocab-quiz-service/internal/dataset"
	pgstore "vocab-quiz-service/internal/infra/postgres"
	infraredis "vocab-quiz-service/internal/infra/redis"

	"github.com/spf13/cobra"
)

// NewImportCmd loads a CSV word list into Postgres for one user.
func NewImportCmd(configPath *string) *cobra.Command {
	var user, path string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a user's vocabulary CSV (english, chinese, phonetic, example) into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, user, path)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user whose word list is replaced")
	cmd.Flags().StringVar(&path, "file", "", "CSV file to import")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, configPath, user, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ds, err := dataset.Parse(user, f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrateDB(ctx, db); err != nil {
		return err
	}
	if err := pgstore.NewDatasetWriter(db).Replace(ctx, ds); err != nil {
		return err
	}

	// drop the cached copy so the next selection sees the import
	if client := newRedisClient(cfg); client != nil {
		defer client.Close()
		cache := infraredis.NewDatasetRepository(client, nil, config.TTLDuration(cfg.Dataset.TTL, time.Hour))
		if err := cache.Invalidate(ctx, user); err != nil {
			logger.Warn("invalidate cached dataset failed", "user", user, "error", err)
		}
	}

	logger.Info("vocabulary imported", slog.String("user", user), slog.Int("entries", ds.Len()))
	return nil
}
