package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"millionaire-service/internal/config"
	"millionaire-service/internal/infra/catalog"
	"millionaire-service/internal/infra/postgres"
	infraredis "millionaire-service/internal/infra/redis"
)

// NewSeedCmd imports a YAML catalog of questions and players into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import questions and players from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog file (defaults to questions.file)")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if file == "" {
		file = cfg.Questions.File
	}
	cat, err := catalog.Load(file)
	if err != nil {
		return err
	}
	if missing := cat.MissingLevels(); len(missing) > 0 {
		slog.WarnContext(ctx, "seed: catalog cannot fill a game", "missingLevels", missing)
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := postgres.ImportQuestions(ctx, pool, cat.Questions); err != nil {
		return err
	}
	if err := postgres.UpsertPlayers(ctx, pool, cat.Players); err != nil {
		return err
	}

	if client := newRedisClient(cfg); client != nil {
		defer client.Close()
		repo := infraredis.NewQuestionRepository(client, nil, cfg.Redis.Prefix, 0)
		if err := repo.Invalidate(ctx); err != nil {
			slog.WarnContext(ctx, "seed: question cache not cleared", "error", err)
		}
	}

	slog.InfoContext(ctx, "seed: catalog imported",
		"file", file,
		"questions", len(cat.Questions),
		"players", len(cat.Players),
	)
	return nil
}
