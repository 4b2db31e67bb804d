package normalize

import (
	"errors"
	"fmt"
)

// Sentinel failure conditions from spec.md §4.2.
var (
	ErrMultipleDefinitions = errors.New("source contains zero or more than one function definition")
	ErrUnsupportedConstruct = errors.New("source uses a construct that is not yet canonicalizable")
	ErrMalformedInput       = errors.New("source does not parse")
)

// UnsupportedConstructError reports an UnsupportedConstruct failure together
// with the source span of the offending node, per spec.md §4.2.
type UnsupportedConstructError struct {
	Construct string
	Start     uint32
	End       uint32
}

func (e *UnsupportedConstructError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %q at bytes [%d,%d)", ErrUnsupportedConstruct, e.Construct, e.Start, e.End)
}

func (e *UnsupportedConstructError) Unwrap() error { return ErrUnsupportedConstruct }

func (e *UnsupportedConstructError) Is(target error) bool {
	return target == ErrUnsupportedConstruct
}

// MultipleDefinitionsError reports how many function definitions were found
// when exactly one was required.
type MultipleDefinitionsError struct {
	Count int
}

func (e *MultipleDefinitionsError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: found %d", ErrMultipleDefinitions, e.Count)
}

func (e *MultipleDefinitionsError) Unwrap() error { return ErrMultipleDefinitions }

func (e *MultipleDefinitionsError) Is(target error) bool {
	return target == ErrMultipleDefinitions
}
