package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIO marks missing or unreadable source content. Soft-fail:
	// the ingest pipeline skips the item and continues, escalating
	// only when nothing could be loaded at all.
	ErrIO = errors.New("source content unavailable")

	// ErrIndex marks a vector-store upsert or search failure. Fatal
	// to the current collection batch or request, never to siblings.
	ErrIndex = errors.New("vector index failure")

	// ErrGeneration marks an exhausted-retries or malformed-payload
	// failure from the generation service.
	ErrGeneration = errors.New("generation failure")

	// ErrTimeout marks a generation call that exceeded its allotted
	// time. It bypasses retry and surfaces immediately.
	ErrTimeout = errors.New("generation timed out")

	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
