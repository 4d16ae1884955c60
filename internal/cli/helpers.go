package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Prikur76/quiz-bots/internal/config"
	"github.com/Prikur76/quiz-bots/internal/engine"
	infraredis "github.com/Prikur76/quiz-bots/internal/infra/redis"
)

func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// buildEngine wires the Redis-backed stores into the session engine and
// verifies the corpus is loaded. An empty corpus is a configuration error and
// fails startup rather than every user's first request.
func buildEngine(ctx context.Context, cfg config.Config, log *slog.Logger) (*engine.Engine, error) {
	client, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	questions := infraredis.NewQuestionStore(client, cacheTTL)

	count, err := questions.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("question corpus is empty, run `quiz-bots upload` first")
	}
	log.Info("corpus loaded", "questions", count)

	sessions := infraredis.NewSessionStore(client)
	return engine.New(questions, sessions, log), nil
}
