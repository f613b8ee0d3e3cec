package completion

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rlch/nqls"
)

// ErrPanic marks a collaborator that panicked during a fetch.
var ErrPanic = errors.New("completion source panicked")

// Source names the part of the engine an error came from.
type Source string

// Completion sources.
const (
	SourceSchema    Source = "schema"
	SourceQuestions Source = "questions"
	SourceEngine    Source = "engine"
)

// Error is a completion failure attributed to a source.
type Error struct {
	Source Source
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s completion: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of a remote completion.
// Err is set only when no candidates could be produced at all; a source that
// degraded is reported in Degraded while Candidates carry what remained.
type Result struct {
	Candidates []nqls.Candidate
	Err        error
	Degraded   []*Error
}

// OrEmpty converts the result to the caller-facing form: any error becomes
// an empty candidate list, logged but never returned.
func (r Result) OrEmpty(logger *zap.Logger) []nqls.Candidate {
	if r.Err != nil {
		logger.Warn("Completion failed", zap.Error(r.Err))

		return []nqls.Candidate{}
	}

	if r.Candidates == nil {
		return []nqls.Candidate{}
	}

	return r.Candidates
}
