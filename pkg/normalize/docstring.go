package normalize

import (
	"fmt"

	"github.com/odvcencio/codepool/pkg/pyast"
)

// StripDocstring removes the docstring statement (if any) from an
// already-canonical single-function source, without touching any other
// identifier. It is the operation spec.md §4.6 step 1 needs to recompute a
// v0 record's function hash ("from normalized code without docstring")
// independently of how that record was originally produced — the v0 code is
// canonical already, so only the docstring needs removing, not a full
// re-normalization pass.
func StripDocstring(source []byte) (string, error) {
	m, err := pyast.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer m.Release()

	if m.FunctionCount != 1 {
		return "", &MultipleDefinitionsError{Count: m.FunctionCount}
	}

	fn := m.Function
	stmt, _, ok := m.IsDocstringStatement(fn.BodyNode)
	if !ok {
		return string(source), nil
	}

	lineStart, lineEnd := lineSpan(source, stmt.StartByte(), stmt.EndByte())
	return string(splice(source, []edit{{Start: lineStart, End: lineEnd, Text: ""}})), nil
}

// SentinelizeDocstring replaces the docstring statement (if any) in an
// already-canonical single-function source with the fixed sentinel text,
// leaving every other byte untouched. This is what object.json's
// normalized_code field actually stores (spec.md §4.2's "placeholder
// docstring (an invariant non-empty sentinel)"); StripDocstring's
// docstring-free form is only ever used to compute the function hash, never
// persisted as normalized_code.
func SentinelizeDocstring(source []byte, sentinel string) (string, error) {
	m, err := pyast.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer m.Release()

	if m.FunctionCount != 1 {
		return "", &MultipleDefinitionsError{Count: m.FunctionCount}
	}

	fn := m.Function
	_, str, ok := m.IsDocstringStatement(fn.BodyNode)
	if !ok {
		return string(source), nil
	}

	return string(splice(source, []edit{{
		Start: str.StartByte(),
		End:   str.EndByte(),
		Text:  `"""` + sentinel + `"""`,
	}})), nil
}
