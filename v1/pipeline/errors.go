package pipeline

import (
	"errors"
	"fmt"
)

// ErrBatchTooLarge is wrapped when a request exceeds MaxBatchSize.
var ErrBatchTooLarge = errors.New("batch too large")

// ValidationError rejects input before any embedding or store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EmbeddingError wraps a model failure, including texts that produced no
// token vectors.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return "embedding failed: " + e.Err.Error()
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError wraps a vector store failure. It is fatal for the request.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s failed: %s", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func batchTooLarge(field string, n, limit int) error {
	return fmt.Errorf("%w: %s has %d items, limit is %d", ErrBatchTooLarge, field, n, limit)
}
