// Package errs defines the three error kinds the arboria core surfaces:
// TypeError, InvalidArgument, and TrainFailed. The exported Fit methods and
// Accuracy return their errors as one of these, wrapped with
// github.com/pkg/errors so callers keep a cause chain without losing the
// kind. Predict methods return no error.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the three error surfaces the core exposes.
type Kind int

const (
	// TypeError: caller passed a non-array input or the wrong element type.
	TypeError Kind = iota
	// InvalidArgument: bad hyperparameter, shape mismatch, unknown criterion.
	InvalidArgument
	// TrainFailed: a worker task failed during parallel tree construction.
	TrainFailed
)

func (k Kind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case InvalidArgument:
		return "InvalidArgument"
	case TrainFailed:
		return "TrainFailed"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type returned across the core's API. It
// carries a Kind so callers can branch with errors.As, plus an optional
// RunID correlating it to the structured log lines emitted during Fit.
type Error struct {
	Kind  Kind
	RunID string
	cause error
}

func (e *Error) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s [run %s]: %s", e.Kind, e.RunID, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, errs.TypeErr) style checks work against the Kind:
// any *Error target matches when its Kind is equal, whatever its cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds a Kind-tagged error from a format string, stack-annotated via
// pkg/errors so the cause chain survives wrapping by callers.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, cause: errors.Errorf(format, args...)}
}

// Wrap attaches a Kind to an existing error, preserving it as the cause.
func Wrap(k Kind, err error, msg string) *Error {
	return &Error{Kind: k, cause: errors.Wrap(err, msg)}
}

// WithRun attaches a run id (the uuid forest.RandomForestClassifier.Fit and
// forest.RandomForestRegressor.Fit log with) to an existing *Error for log
// correlation.
func WithRun(err *Error, runID string) *Error {
	err.RunID = runID
	return err
}

// sentinel values for errors.Is(err, errs.TypeErr) style checks without
// constructing a full error.
var (
	TypeErr      = &Error{Kind: TypeError, cause: errors.New("type error")}
	InvalidArg   = &Error{Kind: InvalidArgument, cause: errors.New("invalid argument")}
	TrainFailure = &Error{Kind: TrainFailed, cause: errors.New("train failed")}
)
