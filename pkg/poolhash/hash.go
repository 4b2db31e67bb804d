// Package poolhash computes the two content hashes this system is built on:
// the function hash (identity of normalized code, docstring-independent) and
// the mapping hash (identity of one language variant). Mirrors the teacher's
// pkg/object/hash.go SHA-256 helpers, generalized from a single envelope
// hash to the two distinct hashing contracts spec.md §4.3 defines.
package poolhash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Sum computes the lowercase-hex SHA-256 digest of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Function computes the function identity hash from normalized code with
// its docstring statement already removed (spec.md §3 invariant 1).
func Function(normalizedCodeNoDocstring string) string {
	return Sum([]byte(normalizedCodeNoDocstring))
}

// MappingFields is the exact field set hashed to produce a mapping hash
// (spec.md §3 invariant 2): docstring, name_mapping, alias_mapping, comment.
type MappingFields struct {
	Docstring    string
	NameMapping  map[string]string
	AliasMapping map[string]string
	Comment      string
}

// Mapping computes the mapping identity hash: SHA-256 of the canonical JSON
// encoding of fields, with sorted keys, no insignificant whitespace, and
// non-ASCII left unescaped.
func Mapping(fields MappingFields) string {
	return Sum(CanonicalJSON(fields))
}

// CanonicalJSON renders fields as canonical JSON: object keys sorted
// lexicographically at every level, no whitespace, UTF-8 bytes with non-ASCII
// characters left unescaped rather than \uXXXX-encoded.
func CanonicalJSON(fields MappingFields) []byte {
	obj := map[string]any{
		"alias_mapping": toOrderedMap(fields.AliasMapping),
		"comment":       fields.Comment,
		"docstring":     fields.Docstring,
		"name_mapping":  toOrderedMap(fields.NameMapping),
	}
	return canonicalize(obj)
}

func toOrderedMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// canonicalize marshals v with sorted object keys and unescaped non-ASCII,
// matching spec.md §3 invariant 2. encoding/json already sorts map keys,
// omits whitespace and writes non-ASCII runes as UTF-8 by default; it does
// HTML-escape '<', '>' and '&' as \uXXXX escapes, which
// canonicalize must undo.
func canonicalize(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// The inputs here are always plain maps/strings built by this
		// package; a marshal failure would indicate a programming error.
		panic(err)
	}
	return unescapeNonASCII(data)
}

// unescapeNonASCII reverses json.Marshal's HTML escaping ('<', '>', '&'
// written as \uXXXX) so that canonical JSON carries those characters
// directly. It round-trips through json.Decoder/Encoder with
// SetEscapeHTML(false) rather than hand-parsing escape sequences; U+2028
// and U+2029 stay \u-escaped, as encoding/json always writes them.
func unescapeNonASCII(data []byte) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		panic(err)
	}
	if err := enc.Encode(sortedValue(v)); err != nil {
		panic(err)
	}
	// Encoder.Encode appends a trailing newline; canonical JSON has none.
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// sortedValue walks a decoded JSON value and rebuilds every nested map as a
// fresh map[string]any; the encoder emits map keys in sorted order, so the
// rebuild only makes that ordering explicit for a tree that came from a
// generic interface{} decode.
func sortedValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(t))
		for _, k := range keys {
			out[k] = sortedValue(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = sortedValue(e)
		}
		return out
	default:
		return t
	}
}
