package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Prikur76/quiz-bots/internal/config"
	"github.com/Prikur76/quiz-bots/internal/infra/postgres"
	infraredis "github.com/Prikur76/quiz-bots/internal/infra/redis"
	"github.com/Prikur76/quiz-bots/internal/logging"
)

// NewRestoreCmd rebuilds the Redis corpus from the Postgres copy. The swap is
// a full atomic replacement with the original question numbers, so sessions
// that reference a question keep resolving across the reload.
func NewRestoreCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Rebuild the Redis corpus from Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd.Context(), *configPath)
		},
	}
}

func runRestore(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url is not configured")
	}
	log := logging.New(cfg.Logging)

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	questions, err := postgres.NewCorpusStore(pool).LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("postgres corpus is empty, nothing to restore")
	}

	client, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if err := infraredis.ReplaceCorpus(ctx, client, questions); err != nil {
		return err
	}
	log.Info("corpus restored", "questions", len(questions))
	return nil
}
