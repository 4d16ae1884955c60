package cli

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Prikur76/quiz-bots/internal/config"
	"github.com/Prikur76/quiz-bots/internal/corpus"
	"github.com/Prikur76/quiz-bots/internal/infra/postgres"
	infraredis "github.com/Prikur76/quiz-bots/internal/infra/redis"
	"github.com/Prikur76/quiz-bots/internal/logging"
)

// NewUploadCmd builds the ingestion subcommand: parse question files and seed
// the stores.
func NewUploadCmd(configPath *string) *cobra.Command {
	var (
		sourceDir string
		encoding  string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Parse question files and load them into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), *configPath, sourceDir, encoding)
		},
	}
	cmd.Flags().StringVar(&sourceDir, "source", "", "directory with question files")
	cmd.Flags().StringVar(&encoding, "encoding", "KOI8-R", "text encoding of the question files")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func runUpload(ctx context.Context, configPath, sourceDir, encoding string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Logging)

	questions, err := corpus.ReadDir(sourceDir, encoding)
	if err != nil {
		return err
	}
	log.Info("questions parsed", "count", len(questions), "source", sourceDir)

	client, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if err := infraredis.ReplaceCorpus(ctx, client, questions); err != nil {
		return err
	}
	log.Info("corpus written to redis", "questions", len(questions))

	if cfg.Postgres.URL == "" {
		return nil
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.NewCorpusStore(pool).SaveAll(ctx, questions); err != nil {
		return err
	}
	log.Info("corpus persisted to postgres", "questions", len(questions))
	return nil
}
