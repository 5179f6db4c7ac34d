package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a missing user, profile, or record set.
var ErrNotFound = errors.New("not found")

// ErrEmptyResponse marks a model call that returned no text.
var ErrEmptyResponse = errors.New("model returned empty response")

// TransportError wraps a network or API failure talking to an external
// collaborator (LLM, mail). Transport errors abort the current pipeline run.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error in %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err has a TransportError anywhere in its chain.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// InputSerializationError marks data that could not be serialized into a
// prompt. It surfaces before any model call is made.
type InputSerializationError struct {
	Err error
}

func (e *InputSerializationError) Error() string {
	return fmt.Sprintf("input serialization failed: %v", e.Err)
}

func (e *InputSerializationError) Unwrap() error { return e.Err }

// PipelineError wraps a stage abort with the stage that failed.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
