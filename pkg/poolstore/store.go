// Package poolstore implements the v1 content-addressed storage engine
// (spec.md §4.4): the 2-character shard fan-out directory layout, the
// write path (save_function) and read path (function_load, languages,
// mappings, mapping_load, latest_mapping), schema-version detection, and
// integrity verification on read. The atomic write-temp-then-rename
// discipline mirrors the teacher's pkg/object/store.go Write method.
package poolstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is a content-addressed function/mapping store rooted at POOL_ROOT.
type Store struct {
	root string

	// tmpTag is computed once per Store (per process) and embedded in every
	// temp-file name this Store creates, so that two processes racing to
	// write into the same shard directory can never collide on a temp name
	// even if os.CreateTemp's own randomness were ever exhausted or seeded
	// identically (spec.md §6 "unique per-process suffix").
	tmpTag string
}

// New creates a Store rooted at root. The objects/ subdirectory is created
// lazily on first write.
func New(root string) *Store {
	return &Store{root: root, tmpTag: uuid.NewString()}
}

// Root returns the pool root directory this Store was created with.
func (s *Store) Root() string { return s.root }

func (s *Store) objectsDir() string { return filepath.Join(s.root, "objects") }

// functionDir returns the v1 directory for function hash h:
// objects/h0h1/h2...h63/
func (s *Store) functionDir(h string) (string, error) {
	if err := ValidateHashFormat(h); err != nil {
		return "", err
	}
	return filepath.Join(s.objectsDir(), h[:2], h[2:]), nil
}

// v0Path returns the legacy v0 record path for function hash h:
// objects/h0h1/rest.json
func (s *Store) v0Path(h string) (string, error) {
	if err := ValidateHashFormat(h); err != nil {
		return "", err
	}
	return filepath.Join(s.objectsDir(), h[:2], h[2:]+".json"), nil
}

func (s *Store) mappingDir(h, lang, mappingHash string) (string, error) {
	fd, err := s.functionDir(h)
	if err != nil {
		return "", err
	}
	if err := ValidateLanguageCode(lang); err != nil {
		return "", err
	}
	if err := ValidateHashFormat(mappingHash); err != nil {
		return "", err
	}
	return filepath.Join(fd, lang, mappingHash[:2], mappingHash[2:]), nil
}

// atomicWriteFile writes data to path by creating a temp file in the same
// directory and renaming it into place, so a crash between the two steps
// never leaves a partially written file observable (spec.md §4.4, §6).
func (s *Store) atomicWriteFile(dir, filename string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("poolstore: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+s.tmpTag+"-*")
	if err != nil {
		return fmt.Errorf("poolstore: create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("poolstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("poolstore: close temp file: %w", err)
	}

	dest := filepath.Join(dir, filename)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("poolstore: rename into place: %w", err)
	}
	return nil
}

// Version identifies an on-disk schema generation detect_version can find.
type Version int

const (
	// NotFound means neither a v1 directory nor a v0 file exists for a hash.
	NotFound Version = iota
	V1
	V0
)

// DetectVersion implements spec.md §4.4 detect_version.
func (s *Store) DetectVersion(h string) (Version, error) {
	fd, err := s.functionDir(h)
	if err != nil {
		return NotFound, err
	}
	if info, err := os.Stat(fd); err == nil && info.IsDir() {
		return V1, nil
	}
	v0, err := s.v0Path(h)
	if err != nil {
		return NotFound, err
	}
	if info, err := os.Stat(v0); err == nil && !info.IsDir() {
		return V0, nil
	}
	return NotFound, nil
}
