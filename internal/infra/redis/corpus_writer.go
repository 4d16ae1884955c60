package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Prikur76/quiz-bots/internal/domain"
)

// ReplaceCorpus atomically swaps the quiz hash for the given questions. The
// delete and all writes run in one transaction, so readers either see the old
// corpus or the new one, never a mix. Identifiers are the question IDs, so a
// reload from the same source keeps live sessions resolvable.
func ReplaceCorpus(ctx context.Context, client *redis.Client, questions []domain.Question) error {
	if len(questions) == 0 {
		return domain.ErrEmptyCorpus
	}

	pipe := client.TxPipeline()
	pipe.Del(ctx, quizHash)
	for _, question := range questions {
		payload, err := json.Marshal(question)
		if err != nil {
			return fmt.Errorf("encode question %s: %w", question.ID, err)
		}
		pipe.HSet(ctx, quizHash, question.ID, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}
