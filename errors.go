package zstream

import (
	"errors"
	"fmt"
)

// Misuse errors: always a caller bug, surfaced immediately, never retried.
var (
	ErrAlreadyInitialized = errors.New("zstream: session already initialized")
	ErrNotInitialized     = errors.New("zstream: session not initialized")
	ErrClosed             = errors.New("zstream: session closed")
	ErrFinished           = errors.New("zstream: stream already finished")
	ErrDictionaryTiming   = errors.New("zstream: dictionary set after the stream produced output")
	ErrHeaderAttached     = errors.New("zstream: header already attached")
	ErrHeaderTiming       = errors.New("zstream: header attached after the stream produced output")
	ErrHeaderFormat       = errors.New("zstream: header requires the gzip format")
)

// Parameter validation errors, reported at session initialization.
var (
	ErrInvalidWindowBits  = errors.New("zstream: window bits outside 8..15")
	ErrInvalidLevel       = errors.New("zstream: invalid compression level")
	ErrInvalidMemoryLevel = errors.New("zstream: memory level outside 1..9")
	ErrAutoDetectEncode   = errors.New("zstream: auto-detect format is decode-only")
)

var (
	// ErrDictionaryRequired is returned when the stream signals that a
	// preset dictionary is needed and none was supplied.
	ErrDictionaryRequired = errors.New("zstream: dictionary required")

	// ErrCancelled is returned when cooperative cancellation is observed
	// at a chunk or iteration boundary.
	ErrCancelled = errors.New("zstream: cancelled")

	// ErrUnsupportedAlgorithm is returned by the one-shot algorithm
	// registry for algorithms it does not know.
	ErrUnsupportedAlgorithm = errors.New("zstream: unsupported compression algorithm")
)

// EngineError carries a fatal status from the underlying codec engine.
// The original status code is preserved for diagnostics and never
// re-wrapped in another codec error.
type EngineError struct {
	Status Status
	Detail string
}

func (e *EngineError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("zstream: engine %s", e.Status)
	}
	return fmt.Sprintf("zstream: engine %s: %s", e.Status, e.Detail)
}

// AsEngineError unwraps err to an *EngineError if one is present.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// PipelineError reports a filesystem-level failure in a file pipeline.
// It is kept distinct from the codec error taxonomy so callers can
// distinguish "bad data" from "bad file". Chunk is the zero-based chunk
// index at which the failure occurred, or -1 when not applicable.
type PipelineError struct {
	Op    string
	Path  string
	Chunk int
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("zstream: pipeline %s %s (chunk %d): %v", e.Op, e.Path, e.Chunk, e.Err)
	}
	return fmt.Sprintf("zstream: pipeline %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// AsPipelineError unwraps err to a *PipelineError if one is present.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
