// Package apperr defines the error taxonomy shared by the pipeline stages.
//
// Every error that crosses a stage boundary is an *Error carrying a Kind and
// the name of the stage that produced it. Transports map the Kind to a status
// code; the pipeline uses it to decide between aborting and degrading.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is reported for errors that are not an *Error.
	KindUnknown Kind = iota

	// KindConfiguration covers missing credentials or unusable clients.
	// Detected at start-up and fatal to serving.
	KindConfiguration

	// KindValidation covers bad caller input (empty text, unsupported language).
	KindValidation

	// KindUpstream covers LLM provider failures. Fatal to a chat request.
	KindUpstream

	// KindSynthesis covers speech synthesis failures after the fallback was exhausted.
	KindSynthesis

	// KindBestEffort covers failures that are only ever logged (URL opening).
	KindBestEffort
)

// String returns the kind name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindSynthesis:
		return "synthesis"
	case KindBestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// Error is a classified failure from one pipeline stage.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Stage
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration wraps err as a configuration error.
func Configuration(stage string, err error) error {
	return &Error{Kind: KindConfiguration, Stage: stage, Err: err}
}

// Validation wraps err as a validation error.
func Validation(stage string, err error) error {
	return &Error{Kind: KindValidation, Stage: stage, Err: err}
}

// Upstream wraps err as an upstream generation error.
func Upstream(stage string, err error) error {
	return &Error{Kind: KindUpstream, Stage: stage, Err: err}
}

// Synthesis wraps err as a synthesis error.
func Synthesis(stage string, err error) error {
	return &Error{Kind: KindSynthesis, Stage: stage, Err: err}
}

// BestEffort wraps err as a best-effort error.
func BestEffort(stage string, err error) error {
	return &Error{Kind: KindBestEffort, Stage: stage, Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
