package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Prikur76/quiz-bots/internal/corpus"
	"github.com/Prikur76/quiz-bots/internal/domain"
	"github.com/Prikur76/quiz-bots/internal/engine"
	"github.com/Prikur76/quiz-bots/internal/infra/memory"
)

func TestNewQuestionAssignsAndPrompts(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "2+2?", Answer: "4"})

	reply, err := eng.Handle(ctx, msg("Новый вопрос"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if reply.Text != "2+2?" {
		t.Fatalf("expected question prompt, got %q", reply.Text)
	}
	assertState(t, eng, domain.Attempting)
}

func TestCorrectAnswerReturnsToChoosing(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "2+2?", Answer: "4"})

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	reply, err := eng.Handle(ctx, msg("4"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, "Правильный ответ") {
		t.Fatalf("expected correct reply, got %q", reply.Text)
	}
	assertState(t, eng, domain.Choosing)
}

func TestIncorrectAnswerKeepsAttempting(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "2+2?", Answer: "4"})

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	reply, err := eng.Handle(ctx, msg("5"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, "Неверный ответ") {
		t.Fatalf("expected incorrect reply, got %q", reply.Text)
	}
	assertState(t, eng, domain.Attempting)
}

func TestAnswerComparisonIsCaseFolded(t *testing.T) {
	ctx := context.Background()
	answer := corpus.NormalizeAnswer("Дарвин.")
	if answer != "Дарвин" {
		t.Fatalf("unexpected normalized answer %q", answer)
	}
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "Кто?", Answer: answer})

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	reply, err := eng.Handle(ctx, msg("дарвин"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, "Правильный ответ") {
		t.Fatalf("expected case-folded input to be judged correct, got %q", reply.Text)
	}
}

func TestGiveUpRevealsAnswerAndClearsSession(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "Capital of France?", Answer: "Paris"})

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	reply, err := eng.Handle(ctx, msg("Сдаться"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, "Paris") {
		t.Fatalf("expected answer reveal, got %q", reply.Text)
	}
	assertState(t, eng, domain.Choosing)
}

func TestGiveUpWithoutQuestionReprompts(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "2+2?", Answer: "4"})

	reply, err := eng.Handle(ctx, msg("Сдаться"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, engine.ButtonNewQuestion) {
		t.Fatalf("expected re-prompt, got %q", reply.Text)
	}
	assertState(t, eng, domain.Choosing)
}

func TestStartGreetsWithoutTouchingSession(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "2+2?", Answer: "4"})

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); err != nil {
		t.Fatalf("handle: %v", err)
	}

	in := msg("/start")
	in.DisplayName = "Алиса"
	reply, err := eng.Handle(ctx, in)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, "Алиса") {
		t.Fatalf("expected greeting by name, got %q", reply.Text)
	}
	// the active question survives /start
	assertState(t, eng, domain.Attempting)
}

func TestCancelClearsSession(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(domain.Question{ID: "1", Prompt: "2+2?", Answer: "4"})

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	reply, err := eng.Handle(ctx, msg("/cancel"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reply.RemoveKeyboard {
		t.Fatalf("expected keyboard removal on cancel")
	}
	assertState(t, eng, domain.Choosing)
}

func TestDanglingQuestionRecoversToChoosing(t *testing.T) {
	ctx := context.Background()
	eng, sessions := newTestEngine(domain.Question{ID: "1", Prompt: "2+2?", Answer: "4"})

	// session points at a question the corpus does not have
	if err := sessions.Set(ctx, "tg_user_1", "999"); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	reply, err := eng.Handle(ctx, msg("что-нибудь"))
	if err != nil {
		t.Fatalf("expected local recovery, got %v", err)
	}
	if !strings.Contains(reply.Text, engine.ButtonNewQuestion) {
		t.Fatalf("expected re-prompt, got %q", reply.Text)
	}
	assertState(t, eng, domain.Choosing)
}

func TestStoreErrorsBubbleUp(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection refused")
	eng := engine.New(
		memory.NewQuestionStore([]domain.Question{{ID: "1", Prompt: "2+2?", Answer: "4"}}),
		failingSessionStore{err: storeErr},
		nil,
	)

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}

func TestRandomOnEmptyCorpus(t *testing.T) {
	ctx := context.Background()
	eng := engine.New(memory.NewQuestionStore(nil), memory.NewSessionStore(), nil)

	if _, err := eng.Handle(ctx, msg("Новый вопрос")); !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func msg(text string) domain.Message {
	return domain.Message{UserKey: "tg_user_1", Text: text}
}

func newTestEngine(questions ...domain.Question) (*engine.Engine, *memory.SessionStore) {
	sessions := memory.NewSessionStore()
	return engine.New(memory.NewQuestionStore(questions), sessions, nil), sessions
}

func assertState(t *testing.T, eng *engine.Engine, want domain.State) {
	t.Helper()
	state, err := eng.State(context.Background(), "tg_user_1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != want {
		t.Fatalf("expected state %v, got %v", want, state)
	}
}

type failingSessionStore struct {
	err error
}

func (s failingSessionStore) Get(context.Context, string) (string, bool, error) {
	return "", false, s.err
}
func (s failingSessionStore) Set(context.Context, string, string) error { return s.err }
func (s failingSessionStore) Clear(context.Context, string) error       { return s.err }
