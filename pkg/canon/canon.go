// Package canon assigns deterministic canonical identifiers to the names a
// source function binds, following a single left-to-right, pre-order walk of
// its AST (spec §4.1). Two runs over the same binding sequence always produce
// the same canonical names.
package canon

import "fmt"

// Prefix is the fixed canonical-identifier prefix used pool-wide. The family
// of names it produces, "_bb_v_0", "_bb_v_1", ..., matches the prefix used by
// the later, SQLite-backed iteration of this system (see SPEC_FULL.md §12).
const Prefix = "_bb"

// Name renders a canonical identifier for ordinal n.
func Name(n int) string {
	return fmt.Sprintf("%s_v_%d", Prefix, n)
}

// IsCanonical reports whether s has the shape this package assigns
// ("_bb_v_<digits>"), regardless of whether s was actually produced by an
// Allocator. pkg/denorm uses this to tell a missing name_mapping entry
// (MappingIncomplete) apart from a name that was legitimately excluded from
// renaming.
func IsCanonical(s string) bool {
	rest, ok := cutPrefix(s, Prefix+"_v_")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || s[:len(prefix)] != prefix {
		return "", false
	}
	return s[len(prefix):], true
}

// Allocator assigns canonical names in first-appearance order. Index 0 is
// reserved for the function's own name; the caller must assign it first via
// AssignFunctionName, then parameters via AssignParam, before resolving any
// other identifier through Resolve.
type Allocator struct {
	next     int
	forward  map[string]string // original identifier -> canonical identifier
	reverse  map[string]string // canonical identifier -> original identifier
	skipSet  map[string]bool   // identifiers that must never be renamed (builtins, imports, pool aliases)
}

// New creates an allocator. skip holds identifiers the allocator must leave
// untouched: language built-ins, names bound by imports, and pool-import
// aliases (spec §4.1 "Names excluded from renaming").
func New(skip map[string]bool) *Allocator {
	if skip == nil {
		skip = map[string]bool{}
	}
	return &Allocator{
		forward: make(map[string]string),
		reverse: make(map[string]string),
		skipSet: skip,
	}
}

// AssignFunctionName reserves ordinal 0 for the function's own name. It must
// be called exactly once, before any other assignment.
func (a *Allocator) AssignFunctionName(orig string) string {
	return a.assignNext(orig)
}

// AssignParam reserves the next ordinal for a parameter, in declaration
// order. Callers must invoke this for every parameter, in source order,
// before walking the function body.
func (a *Allocator) AssignParam(orig string) string {
	return a.assignNext(orig)
}

func (a *Allocator) assignNext(orig string) string {
	if canon, ok := a.forward[orig]; ok {
		return canon
	}
	canon := Name(a.next)
	a.next++
	a.forward[orig] = canon
	a.reverse[canon] = orig
	return canon
}

// Resolve returns the canonical name for orig, assigning a fresh one on
// first occurrence unless orig is excluded from renaming (builtin, import
// binding, or pool-import alias), in which case orig is returned unchanged.
func (a *Allocator) Resolve(orig string) string {
	if a.skipSet[orig] {
		return orig
	}
	return a.assignNext(orig)
}

// IsRenamed reports whether orig has been assigned a canonical name (as
// opposed to being passed through unchanged because it is excluded).
func (a *Allocator) IsRenamed(orig string) bool {
	_, ok := a.forward[orig]
	return ok
}

// ForwardMapping returns original identifier -> canonical identifier.
func (a *Allocator) ForwardMapping() map[string]string {
	out := make(map[string]string, len(a.forward))
	for k, v := range a.forward {
		out[k] = v
	}
	return out
}

// NameMapping returns canonical identifier -> original identifier, the shape
// persisted as Mapping.name_mapping (spec §3). Iteration order of the
// returned map is not meaningful; callers that need insertion order should
// use Order.
func (a *Allocator) NameMapping() map[string]string {
	out := make(map[string]string, len(a.reverse))
	for k, v := range a.reverse {
		out[k] = v
	}
	return out
}

// Order returns canonical identifiers in assignment order, i.e. the
// insertion order spec §3 requires name_mapping to preserve when persisted.
func (a *Allocator) Order() []string {
	out := make([]string, a.next)
	for i := range out {
		out[i] = Name(i)
	}
	return out
}
