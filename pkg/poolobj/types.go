// Package poolobj defines the on-disk schemas persisted by the storage
// engine: the NormalizedFunction object, the per-language Mapping, and the
// legacy v0 record the migrator reads. Field shapes mirror spec.md §3 and
// are ground-truthed against the teacher's pkg/object/types.go (typed,
// JSON-friendly object structs) and the v0/v1 tests in
// original_source/tests/test_storage.py.
package poolobj

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// HashAlgorithm names the algorithm used to compute a function or mapping
// hash. sha256 is the only algorithm defined; the field exists as an
// extension point (spec.md §3).
type HashAlgorithm string

// AlgoSHA256 is the only HashAlgorithm implemented.
const AlgoSHA256 HashAlgorithm = "sha256"

// SchemaVersion identifies the on-disk layout a NormalizedFunction was
// written under.
const SchemaVersion = 1

// Metadata is the immutable, creation-time metadata attached to a
// NormalizedFunction.
type Metadata struct {
	Created      string   `json:"created"`
	Author       string   `json:"author"`
	Tags         []string `json:"tags,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// NormalizedFunction is the content of a function directory's object.json.
// It never carries language-specific data (test_function_save_v1_no_language_data).
type NormalizedFunction struct {
	SchemaVersion  int           `json:"schema_version"`
	Hash           string        `json:"hash"`
	HashAlgorithm  HashAlgorithm `json:"hash_algorithm"`
	NormalizedCode string        `json:"normalized_code"`
	Metadata       Metadata      `json:"metadata"`
}

// NameMapping is an ordered canonical-id -> original-id table. Iteration
// order matters (spec.md §3 invariant 2: insertion order = canonical-id
// order), so callers that need to serialize one deterministically should use
// Mapping.NameOrder rather than ranging over a map.
type NameMapping map[string]string

// AliasMapping maps a referenced function hash to the local alias name a
// pool import was bound to.
type AliasMapping map[string]string

// Mapping is one language variant of a function: the data needed to
// re-present its canonical form in one human language.
//
// name_mapping is an ordered mapping (spec.md §3 invariant 2:
// insertion-order = canonical-id order), so Mapping carries its own
// MarshalJSON/UnmarshalJSON to write and read name_mapping as a JSON object
// with keys in NameOrder rather than encoding/json's default
// lexicographically-sorted map keys. The mapping *hash* is unaffected either
// way: poolhash.CanonicalJSON hashes MappingFields independently, with keys
// always sorted, regardless of how mapping.json orders them on disk.
type Mapping struct {
	Docstring    string
	NameMapping  NameMapping
	AliasMapping AliasMapping
	Comment      string

	// NameOrder is the canonical-id insertion order name_mapping is
	// serialized in. Populated from the allocator on write, and from the
	// JSON key order actually read back on decode.
	NameOrder []string
}

type mappingWire struct {
	Docstring    string          `json:"docstring"`
	NameMapping  json.RawMessage `json:"name_mapping"`
	AliasMapping AliasMapping    `json:"alias_mapping"`
	Comment      string          `json:"comment"`
}

// MarshalJSON writes name_mapping as a JSON object with keys in NameOrder,
// so mapping.json's key order matches the canonical-id allocation order
// instead of being silently re-sorted.
func (m Mapping) MarshalJSON() ([]byte, error) {
	nameMapping, err := marshalOrderedNameMapping(m.NameMapping, m.NameOrder)
	if err != nil {
		return nil, err
	}
	return json.Marshal(mappingWire{
		Docstring:    m.Docstring,
		NameMapping:  nameMapping,
		AliasMapping: m.AliasMapping,
		Comment:      m.Comment,
	})
}

// UnmarshalJSON reads name_mapping back into both the lookup map and
// NameOrder (the key order found on disk).
func (m *Mapping) UnmarshalJSON(data []byte) error {
	var wire mappingWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	nameMapping, order, err := unmarshalOrderedNameMapping(wire.NameMapping)
	if err != nil {
		return err
	}
	m.Docstring = wire.Docstring
	m.NameMapping = nameMapping
	m.AliasMapping = wire.AliasMapping
	m.Comment = wire.Comment
	m.NameOrder = order
	return nil
}

// marshalOrderedNameMapping writes m as a JSON object, visiting order's keys
// first (skipping duplicates) and any keys order omits afterward, sorted for
// determinism. Unknown/missing order entries never happen in practice (every
// caller builds NameOrder from the same allocator that built NameMapping),
// but the fallback keeps this total rather than silently dropping entries.
func marshalOrderedNameMapping(m NameMapping, order []string) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	seen := make(map[string]bool, len(m))
	first := true
	write := func(key string) error {
		value, ok := m[key]
		if !ok || seen[key] {
			return nil
		}
		seen[key] = true
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return err
		}
		valueJSON, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
		return nil
	}

	for _, key := range order {
		if err := write(key); err != nil {
			return nil, err
		}
	}
	var rest []string
	for key := range m {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := write(key); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// unmarshalOrderedNameMapping decodes a JSON object into both a lookup map
// and the key order it was written in, using json.Decoder's token stream
// rather than a map decode (which would discard order).
func unmarshalOrderedNameMapping(data json.RawMessage) (NameMapping, []string, error) {
	out := NameMapping{}
	if len(data) == 0 {
		return out, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("poolobj: decode name_mapping: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("poolobj: name_mapping is not a JSON object")
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("poolobj: decode name_mapping key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("poolobj: name_mapping key is not a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("poolobj: decode name_mapping[%q]: %w", key, err)
		}
		out[key] = value
		order = append(order, key)
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, nil, fmt.Errorf("poolobj: decode name_mapping: %w", err)
	}

	return out, order, nil
}

// V0Record is the legacy schema migrate_v0_to_v1 reads: one JSON file per
// function hash, holding the canonical code (with the author's docstring
// still embedded) and three maps keyed by language code. Shape grounded on
// original_source/ouverture.py's save_function.
type V0Record struct {
	Version        int                     `json:"version"`
	Hash           string                  `json:"hash"`
	NormalizedCode string                  `json:"normalized_code"`
	Docstrings     map[string]string       `json:"docstrings"`
	NameMappings   map[string]NameMapping  `json:"name_mappings"`
	AliasMappings  map[string]AliasMapping `json:"alias_mappings"`
}
