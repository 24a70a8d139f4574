package tts

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common engine conditions.
var (
	// ErrEngineUnavailable is returned when an engine variant is not installed,
	// not configured, or could not be constructed.
	ErrEngineUnavailable = errors.New("tts: engine unavailable")

	// ErrEmptyOutput is returned when an engine reports success but the output
	// file is missing or zero bytes.
	ErrEmptyOutput = errors.New("tts: empty output")
)

// Stage names the part of a synthesis call that failed.
type Stage string

const (
	StageOutputDir Stage = "output directory"
	StageInit      Stage = "initialization"
	StagePrimary   Stage = "primary synthesis"
	StageFallback  Stage = "fallback synthesis"
)

// StageError is one failed stage and its cause.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// SynthesisError is returned when every engine variant failed. It lists each
// failed stage in the order they were attempted.
type SynthesisError struct {
	Failures []StageError
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if len(e.Failures) == 0 {
		return "speech synthesis failed"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return "speech synthesis failed: " + strings.Join(parts, "; ")
}

// Unwrap returns every stage cause, so errors.Is matches any of them.
func (e *SynthesisError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Failed reports whether the given stage is among the failures.
func (e *SynthesisError) Failed(stage Stage) bool {
	for _, f := range e.Failures {
		if f.Stage == stage {
			return true
		}
	}
	return false
}

func (e *SynthesisError) add(stage Stage, err error) {
	e.Failures = append(e.Failures, StageError{Stage: stage, Err: err})
}
