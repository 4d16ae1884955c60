package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Prikur76/quiz-bots/internal/domain"
)

// usersHash is the Redis hash holding sessions: field = platform-prefixed user
// key ("tg_user_<id>", "vk_user_<id>"), value = JSON {"last_question": "<n>"}.
const usersHash = "users"

// SessionStore keeps one session per user in the users hash. Per-field writes
// are atomic on the Redis side; concurrent writers for the same user resolve
// last-write-wins, which is all the relay needs.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, userKey string) (string, bool, error) {
	raw, err := s.client.HGet(ctx, usersHash, userKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session store: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return "", false, fmt.Errorf("session store: decode %s: %w", userKey, err)
	}
	if session.LastQuestion == "" {
		return "", false, nil
	}
	return session.LastQuestion, true, nil
}

func (s *SessionStore) Set(ctx context.Context, userKey, questionID string) error {
	payload, err := json.Marshal(domain.Session{LastQuestion: questionID})
	if err != nil {
		return fmt.Errorf("session store: encode %s: %w", userKey, err)
	}
	if err := s.client.HSet(ctx, usersHash, userKey, payload).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, userKey string) error {
	if err := s.client.HDel(ctx, usersHash, userKey).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}
