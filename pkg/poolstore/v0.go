package poolstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/codepool/pkg/poolobj"
)

// ReadV0 loads the legacy v0 record for function hash h, as written by an
// earlier generation of this tool (SPEC_FULL.md §12, grounded on
// original_source/ouverture.py's save_function).
func (s *Store) ReadV0(h string) (*poolobj.V0Record, error) {
	path, err := s.v0Path(h)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: v0 record %s", ErrNotFound, h)
		}
		return nil, fmt.Errorf("poolstore: read %s: %w", path, err)
	}
	var rec poolobj.V0Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("poolstore: parse v0 record %s: %w", path, err)
	}
	return &rec, nil
}

// BackupV0 renames the v0 record for hash h to a .bak sibling, leaving the
// shard directory otherwise untouched. Called once migration has written and
// verified a v1 object for the same hash (spec.md §4.6 step 4, keep_v0=false).
func (s *Store) BackupV0(h string) error {
	path, err := s.v0Path(h)
	if err != nil {
		return err
	}
	if err := os.Rename(path, path+".bak"); err != nil {
		return fmt.Errorf("poolstore: backup v0 record %s: %w", path, err)
	}
	return nil
}

// ListV0 enumerates every function hash that still has a legacy v0 record
// on disk (a *.json file sitting alongside the v1 shard directories, not
// itself a directory). Used by migrate_all.
func (s *Store) ListV0() ([]string, error) {
	shardEntries, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("poolstore: read dir %s: %w", s.objectsDir(), err)
	}

	var out []string
	for _, shard := range shardEntries {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		shardDir := filepath.Join(s.objectsDir(), shard.Name())
		restEntries, err := os.ReadDir(shardDir)
		if err != nil {
			return nil, fmt.Errorf("poolstore: read dir %s: %w", shardDir, err)
		}
		for _, rest := range restEntries {
			if rest.IsDir() {
				continue
			}
			name := rest.Name()
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			out = append(out, shard.Name()+strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListV1 enumerates every function hash that has a v1 shard directory.
// Used by validate_all (SPEC_FULL.md §12 extends spec.md §4.6 validate to a
// pool-wide sweep, mirroring migrate_all).
func (s *Store) ListV1() ([]string, error) {
	shardEntries, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("poolstore: read dir %s: %w", s.objectsDir(), err)
	}

	var out []string
	for _, shard := range shardEntries {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		shardDir := filepath.Join(s.objectsDir(), shard.Name())
		restEntries, err := os.ReadDir(shardDir)
		if err != nil {
			return nil, fmt.Errorf("poolstore: read dir %s: %w", shardDir, err)
		}
		for _, rest := range restEntries {
			if rest.IsDir() {
				out = append(out, shard.Name()+rest.Name())
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
