package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Prikur76/quiz-bots/internal/domain"
)

// quizHash is the Redis hash holding the corpus: field = question number
// (1-based, as a string), value = JSON {"question": ..., "answer": ...} with
// the answer already normalized at ingestion time.
const quizHash = "quiz"

// QuestionStore serves the corpus out of the quiz hash with a small in-process
// cache in front, so repeated lookups of the same question (every incorrect
// attempt re-reads it) do not hit Redis each time. The corpus is immutable
// during operation, which makes the cache safe; the TTL only bounds staleness
// across full corpus reloads.
type QuestionStore struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	clock  func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestion
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

func NewQuestionStore(client *redis.Client, ttl time.Duration) *QuestionStore {
	return &QuestionStore{
		client: client,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestion),
	}
}

func (s *QuestionStore) Get(ctx context.Context, id string) (domain.Question, error) {
	now := s.clock()

	s.mu.RLock()
	if entry, ok := s.cache[id]; ok && entry.expiresAt.After(now) {
		s.mu.RUnlock()
		return entry.question, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.sf.Do(id, func() (interface{}, error) {
		now := s.clock()
		s.mu.RLock()
		if entry, ok := s.cache[id]; ok && entry.expiresAt.After(now) {
			s.mu.RUnlock()
			return entry.question, nil
		}
		s.mu.RUnlock()

		raw, err := s.client.HGet(ctx, quizHash, id).Result()
		if errors.Is(err, redis.Nil) {
			return domain.Question{}, domain.ErrQuestionNotFound
		}
		if err != nil {
			return domain.Question{}, fmt.Errorf("question store: %w", err)
		}

		var question domain.Question
		if err := json.Unmarshal([]byte(raw), &question); err != nil {
			return domain.Question{}, fmt.Errorf("question store: decode %s: %w", id, err)
		}
		question.ID = id

		s.mu.Lock()
		s.cache[id] = cachedQuestion{question: question, expiresAt: now.Add(s.ttlWithJitter())}
		s.mu.Unlock()
		return question, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

// Random picks a uniformly random question. HRANDFIELD keeps the selection on
// the Redis side, so the corpus size never crosses the wire.
func (s *QuestionStore) Random(ctx context.Context) (domain.Question, error) {
	ids, err := s.client.HRandField(ctx, quizHash, 1).Result()
	if err != nil {
		return domain.Question{}, fmt.Errorf("question store: %w", err)
	}
	if len(ids) == 0 {
		return domain.Question{}, domain.ErrEmptyCorpus
	}
	return s.Get(ctx, ids[0])
}

// Count reports the corpus size, used by the CLI for the startup check.
func (s *QuestionStore) Count(ctx context.Context) (int64, error) {
	n, err := s.client.HLen(ctx, quizHash).Result()
	if err != nil {
		return 0, fmt.Errorf("question store: %w", err)
	}
	return n, nil
}

func (s *QuestionStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
