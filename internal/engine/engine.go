package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Prikur76/quiz-bots/internal/corpus"
	"github.com/Prikur76/quiz-bots/internal/domain"
)

// QuestionStore is read-only access to the loaded corpus.
type QuestionStore interface {
	Get(ctx context.Context, id string) (domain.Question, error)
	Random(ctx context.Context) (domain.Question, error)
}

// SessionStore maps a user key to the question currently assigned to them.
// Absence of a session is a valid state, not an error.
type SessionStore interface {
	Get(ctx context.Context, userKey string) (questionID string, ok bool, err error)
	Set(ctx context.Context, userKey, questionID string) error
	Clear(ctx context.Context, userKey string) error
}

// Button labels offered to users. Adapters render them with whatever keyboard
// mechanism their platform has; the engine only decides which ones to show.
const (
	ButtonNewQuestion = "Новый вопрос"
	ButtonGiveUp      = "Сдаться"
	ButtonStart       = "Начать"
)

// canonical command vocabulary, matched against trimmed, case-folded input
var (
	startWords       = map[string]bool{"/start": true, "start": true, "начать": true}
	newQuestionWords = map[string]bool{"новый вопрос": true}
	giveUpWords      = map[string]bool{"сдаться": true}
	cancelWords      = map[string]bool{"/cancel": true, "выйти": true}
)

var choosingKeyboard = []string{ButtonNewQuestion, ButtonGiveUp}

// Engine is the quiz session state machine. A user is Attempting while their
// session holds a question id and Choosing otherwise; Handle inspects the
// incoming text plus that derived state and produces the reply and the session
// mutation the transition table calls for.
type Engine struct {
	questions QuestionStore
	sessions  SessionStore
	log       *slog.Logger
}

func New(questions QuestionStore, sessions SessionStore, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{questions: questions, sessions: sessions, log: log}
}

// Handle processes one inbound message for one user. Store failures are
// returned unchanged for the adapter to log and retry around; everything a
// user can cause with bad input is answered with a reply instead.
func (e *Engine) Handle(ctx context.Context, msg domain.Message) (domain.Reply, error) {
	input := corpus.NormalizeInput(msg.Text)

	switch {
	case startWords[input]:
		return welcomeReply(msg.DisplayName), nil
	case cancelWords[input]:
		return e.cancel(ctx, msg)
	case newQuestionWords[input]:
		return e.newQuestion(ctx, msg.UserKey)
	case giveUpWords[input]:
		return e.giveUp(ctx, msg.UserKey)
	default:
		return e.attempt(ctx, msg.UserKey, input)
	}
}

// State reports the derived conversational state for a user.
func (e *Engine) State(ctx context.Context, userKey string) (domain.State, error) {
	_, ok, err := e.sessions.Get(ctx, userKey)
	if err != nil {
		return domain.Choosing, err
	}
	if ok {
		return domain.Attempting, nil
	}
	return domain.Choosing, nil
}

func (e *Engine) cancel(ctx context.Context, msg domain.Message) (domain.Reply, error) {
	if err := e.sessions.Clear(ctx, msg.UserKey); err != nil {
		return domain.Reply{}, fmt.Errorf("clear session: %w", err)
	}
	return farewellReply(msg.DisplayName), nil
}

func (e *Engine) newQuestion(ctx context.Context, userKey string) (domain.Reply, error) {
	question, err := e.questions.Random(ctx)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("pick question: %w", err)
	}
	if err := e.sessions.Set(ctx, userKey, question.ID); err != nil {
		return domain.Reply{}, fmt.Errorf("assign question: %w", err)
	}
	return domain.Reply{Text: question.Prompt, Keyboard: choosingKeyboard}, nil
}

// giveUp reveals the answer and clears the session, so the user lands in a
// clean Choosing state and must ask for a new question to continue.
func (e *Engine) giveUp(ctx context.Context, userKey string) (domain.Reply, error) {
	question, err := e.currentQuestion(ctx, userKey)
	if err != nil {
		return e.recoverSession(ctx, userKey, err)
	}
	if err := e.sessions.Clear(ctx, userKey); err != nil {
		return domain.Reply{}, fmt.Errorf("clear session: %w", err)
	}
	text := fmt.Sprintf("Правильный ответ:\n%s\n\nНажмите \"%s\", чтобы продолжить викторину.",
		question.Answer, ButtonNewQuestion)
	return domain.Reply{Text: text, Keyboard: []string{ButtonNewQuestion}}, nil
}

func (e *Engine) attempt(ctx context.Context, userKey, input string) (domain.Reply, error) {
	question, err := e.currentQuestion(ctx, userKey)
	if err != nil {
		return e.recoverSession(ctx, userKey, err)
	}

	if input == corpus.NormalizeInput(question.Answer) {
		if err := e.sessions.Clear(ctx, userKey); err != nil {
			return domain.Reply{}, fmt.Errorf("clear session: %w", err)
		}
		text := fmt.Sprintf("Правильный ответ!\nДля продолжения нажмите \"%s\".", ButtonNewQuestion)
		return domain.Reply{Text: text, Keyboard: []string{ButtonNewQuestion}}, nil
	}
	return domain.Reply{Text: "Неверный ответ!\nПопробуешь ещё раз?", Keyboard: choosingKeyboard}, nil
}

// currentQuestion resolves the user's assigned question. ErrNoActiveQuestion
// when there is no session, ErrQuestionNotFound when the session points at a
// question the corpus no longer has.
func (e *Engine) currentQuestion(ctx context.Context, userKey string) (domain.Question, error) {
	questionID, ok, err := e.sessions.Get(ctx, userKey)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.Question{}, domain.ErrNoActiveQuestion
	}
	question, err := e.questions.Get(ctx, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

// recoverSession handles the two locally recoverable inconsistencies: answer-
// shaped input with no session, and a session whose question id no longer
// resolves. Both end in Choosing with a re-prompt; store failures pass through.
func (e *Engine) recoverSession(ctx context.Context, userKey string, err error) (domain.Reply, error) {
	switch {
	case errors.Is(err, domain.ErrNoActiveQuestion):
		text := fmt.Sprintf("Нажмите \"%s\", чтобы получить вопрос.", ButtonNewQuestion)
		return domain.Reply{Text: text, Keyboard: choosingKeyboard}, nil
	case errors.Is(err, domain.ErrQuestionNotFound):
		e.log.Error("session points at unknown question, resetting", "user", userKey)
		if clearErr := e.sessions.Clear(ctx, userKey); clearErr != nil {
			return domain.Reply{}, fmt.Errorf("clear session: %w", clearErr)
		}
		text := fmt.Sprintf("Ваш вопрос потерялся. Нажмите \"%s\", чтобы продолжить.", ButtonNewQuestion)
		return domain.Reply{Text: text, Keyboard: choosingKeyboard}, nil
	default:
		return domain.Reply{}, err
	}
}

func welcomeReply(displayName string) domain.Reply {
	greeting := "Привет!"
	if displayName != "" {
		greeting = fmt.Sprintf("Привет, %s!", displayName)
	}
	text := fmt.Sprintf("%s\nЯ бот для викторин. Нажмите \"%s\" для начала викторины.",
		greeting, ButtonNewQuestion)
	return domain.Reply{Text: text, Keyboard: choosingKeyboard}
}

func farewellReply(displayName string) domain.Reply {
	text := "До свидания! Возвращайтесь за новыми вопросами."
	if displayName != "" {
		text = fmt.Sprintf("До свидания, %s! Возвращайтесь за новыми вопросами.", displayName)
	}
	return domain.Reply{Text: text, RemoveKeyboard: true}
}
