package migrate

import "fmt"

// ErrHashMismatch means a v0 record's stored hash does not match the hash
// recomputed from its own normalized code (docstring stripped).
var ErrHashMismatch = fmt.Errorf("migrate: v0 record hash mismatch")

// HashMismatchError carries the two differing hashes for a failed migration.
type HashMismatchError struct {
	Hash       string
	Recomputed string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("migrate: v0 record %s recomputes to %s", e.Hash, e.Recomputed)
}

func (e *HashMismatchError) Unwrap() error { return ErrHashMismatch }

func (e *HashMismatchError) Is(target error) bool { return target == ErrHashMismatch }
