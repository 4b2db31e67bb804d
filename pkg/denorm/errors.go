package denorm

import (
	"errors"
	"fmt"
)

// ErrMappingIncomplete is returned when normalized code references a
// canonical identifier with no corresponding name_mapping entry (spec.md
// §4.5 step 2).
var ErrMappingIncomplete = errors.New("name_mapping is missing an entry for a canonical identifier")

// ErrInvalidNormalizedForm is returned when the input does not parse as
// exactly one Python function definition, which should never happen for
// code this system itself produced and stored.
var ErrInvalidNormalizedForm = errors.New("normalized code is not a single valid function definition")

// MappingIncompleteError names the specific canonical identifier that has
// no entry in name_mapping.
type MappingIncompleteError struct {
	Canonical string
}

func (e *MappingIncompleteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %q", ErrMappingIncomplete, e.Canonical)
}

func (e *MappingIncompleteError) Unwrap() error { return ErrMappingIncomplete }

func (e *MappingIncompleteError) Is(target error) bool {
	return target == ErrMappingIncomplete
}
