package manifest

import (
	"errors"

	"github.com/lengau/craft-application/internal/validation"
)

var (
	// ErrFileMissing indicates the manifest file does not exist.
	ErrFileMissing = errors.New("could not find project file")

	// ErrNotMapping indicates the manifest data is not a mapping at all.
	ErrNotMapping = errors.New("project data is not a mapping")

	// ErrUndeterminedBase is returned by EffectiveBase when neither base nor
	// build-base is set. Callers should check for a base before asking.
	ErrUndeterminedBase = errors.New("could not determine effective base")

	// ErrUnknownField is returned by Update for a name outside the schema.
	ErrUnknownField = errors.New("unknown manifest field")
)

// ValidationError reports every field that failed validation.
type ValidationError struct {
	FileName string
	Failures validation.Failures
}

func (e *ValidationError) Error() string {
	return validation.Format(e.FileName, e.Failures)
}

// Unwrap exposes the structured failures to errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Failures
}
