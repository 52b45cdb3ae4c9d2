package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotMissing is returned when the snapshot file does not exist.
	ErrSnapshotMissing = errors.New("config cache file not found")
	// ErrEvaluator is returned when the evaluator cannot be started or exits with a non-zero status.
	ErrEvaluator = errors.New("evaluator failed")
	// ErrDecode is returned when the evaluator output is not a JSON document describing sections.
	ErrDecode = errors.New("evaluator output cannot be decoded")
)

// EvaluatorError carries the details of a failed evaluator run.
type EvaluatorError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EvaluatorError) Error() string {
	msg := ErrEvaluator.Error() + ": " + e.Binary
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" exited with status %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Is reports ErrEvaluator as the error kind.
func (e *EvaluatorError) Is(target error) bool {
	return target == ErrEvaluator
}

func (e *EvaluatorError) Unwrap() error {
	return e.Err
}
