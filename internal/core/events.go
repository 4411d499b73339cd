package core

import (
	"context"
	"time"
)

// Operation names a Session entry point.
type Operation string

const (
	OpAnswer  Operation = "answer"
	OpSummary Operation = "summary"
	OpRefresh Operation = "refresh"
)

// Outcome classifies how an operation ended.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeNoData  Outcome = "no_data"
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
)

// QueryEvent describes one completed Session operation.
type QueryEvent struct {
	Operation Operation
	ChatID    int64
	Query     string
	Outcome   Outcome
	Matches   int
	Rows      int
	Duration  time.Duration
	ErrorCode string
	Err       error
}

// Recorder receives an event per operation. Errors are logged, never surfaced
// to the user.
type Recorder interface {
	Record(ctx context.Context, ev QueryEvent) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, ev QueryEvent) error

func (f RecorderFunc) Record(ctx context.Context, ev QueryEvent) error {
	return f(ctx, ev)
}
