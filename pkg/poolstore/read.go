package poolstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/codepool/pkg/poolhash"
	"github.com/odvcencio/codepool/pkg/poolobj"
)

// FunctionLoad implements spec.md §4.4 function_load: locate
// objects/h0h1/rest/object.json, parse it, and verify its stored hash
// matches the requested one (directory-path consistency; mismatch is
// Corruption).
func (s *Store) FunctionLoad(h string) (*poolobj.NormalizedFunction, error) {
	fd, err := s.functionDir(h)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(fd, "object.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: function %s", ErrNotFound, h)
		}
		return nil, fmt.Errorf("poolstore: read %s: %w", path, err)
	}

	var obj poolobj.NormalizedFunction
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("poolstore: parse %s: %w", path, err)
	}
	if obj.Hash != h {
		return nil, &CorruptionError{Path: path, Reason: fmt.Sprintf("object.json hash %q != directory hash %q", obj.Hash, h)}
	}
	return &obj, nil
}

// Languages implements spec.md §4.4 languages: enumerate immediate
// subdirectories of the function directory.
func (s *Store) Languages(h string) ([]string, error) {
	fd, err := s.functionDir(h)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(fd)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: function %s", ErrNotFound, h)
		}
		return nil, fmt.Errorf("poolstore: read dir %s: %w", fd, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Mappings implements spec.md §4.4 mappings: enumerate mapping-hash
// directories under H/<lang>/ by walking the two-level shard layout back
// into full hashes.
func (s *Store) Mappings(h, lang string) ([]string, error) {
	fd, err := s.functionDir(h)
	if err != nil {
		return nil, err
	}
	if err := ValidateLanguageCode(lang); err != nil {
		return nil, err
	}
	langDir := filepath.Join(fd, lang)
	shardEntries, err := os.ReadDir(langDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: function %s language %s", ErrNotFound, h, lang)
		}
		return nil, fmt.Errorf("poolstore: read dir %s: %w", langDir, err)
	}

	var out []string
	for _, shard := range shardEntries {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		restEntries, err := os.ReadDir(filepath.Join(langDir, shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("poolstore: read dir %s: %w", filepath.Join(langDir, shard.Name()), err)
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

// MappingLoad implements spec.md §4.4 mapping_load: load mapping.json at
// H/<lang>/m0m1/rest/mapping.json and verify it hashes back to M.
func (s *Store) MappingLoad(h, lang, mappingHash string) (*poolobj.Mapping, error) {
	md, err := s.mappingDir(h, lang, mappingHash)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(md, "mapping.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: mapping %s/%s/%s", ErrNotFound, h, lang, mappingHash)
		}
		return nil, fmt.Errorf("poolstore: read %s: %w", path, err)
	}

	var mapping poolobj.Mapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("poolstore: parse %s: %w", path, err)
	}

	recomputed := poolhash.Mapping(poolhash.MappingFields{
		Docstring:    mapping.Docstring,
		NameMapping:  mapping.NameMapping,
		AliasMapping: mapping.AliasMapping,
		Comment:      mapping.Comment,
	})
	if recomputed != mappingHash {
		return nil, &CorruptionError{Path: path, Reason: fmt.Sprintf("recomputed mapping hash %q != directory hash %q", recomputed, mappingHash)}
	}
	return &mapping, nil
}

// LatestMapping implements spec.md §4.4 latest_mapping: the mapping with the
// latest filesystem modification time, ties broken by the lexicographically
// larger mapping hash.
func (s *Store) LatestMapping(h, lang string) (mappingHash string, mapping *poolobj.Mapping, err error) {
	hashes, err := s.Mappings(h, lang)
	if err != nil {
		return "", nil, err
	}
	if len(hashes) == 0 {
		return "", nil, fmt.Errorf("%w: function %s language %s has no mappings", ErrNotFound, h, lang)
	}

	var bestHash string
	var bestMTime int64
	for _, mh := range hashes {
		md, err := s.mappingDir(h, lang, mh)
		if err != nil {
			return "", nil, err
		}
		info, err := os.Stat(filepath.Join(md, "mapping.json"))
		if err != nil {
			return "", nil, fmt.Errorf("poolstore: stat mapping %s: %w", mh, err)
		}
		mt := info.ModTime().UnixNano()
		if bestHash == "" || mt > bestMTime || (mt == bestMTime && mh > bestHash) {
			bestHash, bestMTime = mh, mt
		}
	}

	m, err := s.MappingLoad(h, lang, bestHash)
	if err != nil {
		return "", nil, err
	}
	return bestHash, m, nil
}
