package store

import (
	"errors"
	"fmt"
)

// Error taxonomy for Apply-path failures. Callers distinguish the classes
// with errors.Is:
//   - ErrValidation: the store rejected the update's content; resubmitting
//     identical data will fail again.
//   - ErrVersionConflict: optimistic-concurrency rejection of a stale
//     write; the caller should re-fetch and re-analyze, not resubmit.
//   - ErrNotFound: the referenced entity does not exist.
//   - ErrUnavailable: transport failure reaching the store; retryable by
//     the caller. This package performs no automatic retries.
var (
	ErrValidation      = errors.New("validation rejected")
	ErrVersionConflict = errors.New("stale version")
	ErrNotFound        = errors.New("entity not found")
	ErrUnavailable     = errors.New("store unavailable")
)

// errorFromDetail maps a wire error back onto the local taxonomy.
func errorFromDetail(detail *ErrorDetail) error {
	if detail == nil {
		return fmt.Errorf("%w: malformed error response", ErrUnavailable)
	}
	switch detail.Code {
	case ErrCodeValidation:
		return fmt.Errorf("%w: %s", ErrValidation, detail.Message)
	case ErrCodeVersionConflict:
		return fmt.Errorf("%w: %s", ErrVersionConflict, detail.Message)
	case ErrCodeNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail.Message)
	default:
		return fmt.Errorf("store error %s: %s", detail.Code, detail.Message)
	}
}

// codeForError maps a local error onto a wire error code.
func codeForError(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrCodeValidation
	case errors.Is(err, ErrVersionConflict):
		return ErrCodeVersionConflict
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	default:
		return ErrCodeInternal
	}
}
