package domain

import "errors"

var (
	// ErrQuestionNotFound indicates a question id that does not resolve in the corpus.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEmptyCorpus indicates no questions have been loaded into the store.
	ErrEmptyCorpus = errors.New("question corpus is empty")
	// ErrNoActiveQuestion is returned when an answer-shaped action arrives for a
	// user whose session has no assigned question.
	ErrNoActiveQuestion = errors.New("no active question for user")
)
