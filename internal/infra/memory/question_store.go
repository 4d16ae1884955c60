package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Prikur76/quiz-bots/internal/domain"
)

// QuestionStore is an in-memory implementation of engine.QuestionStore,
// useful for tests and store-less demo runs.
type QuestionStore struct {
	mu        sync.RWMutex
	byID      map[string]domain.Question
	ids       []string
	rnd       *rand.Rand
	randMutex sync.Mutex
}

func NewQuestionStore(questions []domain.Question) *QuestionStore {
	store := &QuestionStore{
		byID: make(map[string]domain.Question, len(questions)),
		ids:  make([]string, 0, len(questions)),
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, q := range questions {
		if _, exists := store.byID[q.ID]; !exists {
			store.ids = append(store.ids, q.ID)
		}
		store.byID[q.ID] = q
	}
	return store
}

func (s *QuestionStore) Get(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.byID[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

func (s *QuestionStore) Random(_ context.Context) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ids) == 0 {
		return domain.Question{}, domain.ErrEmptyCorpus
	}
	s.randMutex.Lock()
	i := s.rnd.Intn(len(s.ids))
	s.randMutex.Unlock()
	return s.byID[s.ids[i]], nil
}
