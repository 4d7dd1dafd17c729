package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cooking-companion/server/internal/metrics"
	"github.com/cooking-companion/server/internal/schema"
)

var (
	// ErrNotFound is returned for a missing document, recipe or category.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when adding a category name that is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedInput is returned for structured input that cannot be
	// parsed or has the wrong shape, e.g. a patch that is not an object.
	ErrMalformedInput = errors.New("malformed input")

	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrIO is returned when reading or writing storage fails.
	ErrIO = errors.New("storage failure")
)

// ValidationError carries the field-level messages of a rejected document.
type ValidationError struct {
	Kind   schema.Kind
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed:\n%s", e.Kind.Label(), strings.Join(e.Errors, "\n"))
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationDetails returns the field-level messages if err is a
// validation failure.
func ValidationDetails(err error) ([]string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Errors, true
	}
	return nil, false
}

// ioError wraps a filesystem failure so that both ErrIO and the
// underlying fs error match.
func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}

// Outcome classifies err for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrAlreadyExists):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrMalformedInput):
		return metrics.OutcomeMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	}
	return metrics.OutcomeError
}
