package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Prikur76/quiz-bots/internal/domain"
)

// CorpusStore keeps a durable copy of the corpus in Postgres. Redis is the
// serving store; this table exists so the quiz hash can be rebuilt without
// re-parsing the source files (restore command).
type CorpusStore struct {
	pool *pgxpool.Pool
}

func NewCorpusStore(pool *pgxpool.Pool) *CorpusStore {
	return &CorpusStore{pool: pool}
}

// SaveAll replaces the stored corpus in a single transaction.
func (s *CorpusStore) SaveAll(ctx context.Context, questions []domain.Question) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE quiz_questions`); err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	for _, question := range questions {
		num, err := strconv.Atoi(question.ID)
		if err != nil {
			return fmt.Errorf("save corpus: bad question id %q: %w", question.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO quiz_questions (num, question, answer) VALUES ($1, $2, $3)`,
			num, question.Prompt, question.Answer,
		); err != nil {
			return fmt.Errorf("save corpus: insert %s: %w", question.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// LoadAll returns the full corpus in number order.
func (s *CorpusStore) LoadAll(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT num, question, answer FROM quiz_questions ORDER BY num`)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var num int
		var question domain.Question
		if err := rows.Scan(&num, &question.Prompt, &question.Answer); err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		question.ID = strconv.Itoa(num)
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return questions, nil
}
