package services

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrQuotaExceeded    = errors.New("guest AI quota exceeded")
	ErrIncomplete       = errors.New("assessment is not complete enough to score")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrNoAssessment     = errors.New("no assessment in progress")
	ErrInvalidModel     = errors.New("unknown assessment model")
	ErrQuestionMismatch = errors.New("question is not the current question")
	ErrParentIncomplete = errors.New("parent quest is not completed")
	ErrMissingResults   = errors.New("both assessments must be completed first")
	ErrLLMUnavailable   = errors.New("language model is not configured")
)

// ErrBadLLMOutput marks a model reply that could not be turned into the expected shape.
var ErrBadLLMOutput = errors.New("language model returned unusable output")
