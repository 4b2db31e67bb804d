package migrate

import (
	"fmt"
	"strings"

	"github.com/odvcencio/codepool/pkg/normalize"
	"github.com/odvcencio/codepool/pkg/poolhash"
	"github.com/odvcencio/codepool/pkg/poolobj"
	"github.com/odvcencio/codepool/pkg/poolstore"
)

// ValidationReport is the diagnostic output of Validate (spec.md §4.6
// validate). Unlike the teacher's Store.Verify, which fails fast on the
// first integrity violation (appropriate for a read-path safety check this
// package's own poolstore.FunctionLoad/MappingLoad already perform), this
// validator accumulates every issue it finds so a `poolctl validate` run
// tells the operator everything wrong with one hash in a single pass.
type ValidationReport struct {
	FunctionHash string
	OK           bool
	Issues       []string
}

func (r *ValidationReport) fail(format string, args ...any) {
	r.OK = false
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// Validate implements spec.md §4.6 validate(H) for the v1 layout.
func Validate(s *poolstore.Store, h string) (*ValidationReport, error) {
	report := &ValidationReport{FunctionHash: h, OK: true}

	obj, err := s.FunctionLoad(h)
	if err != nil {
		report.fail("object file missing or does not parse: %v", err)
		return report, nil
	}
	if obj.Hash != h {
		report.fail("object hash %q does not match requested hash %q", obj.Hash, h)
	}

	// The function hash identifies the docstring-free form (spec.md §3); the
	// stored normalized_code carries the sentinel docstring (§4.2 step 2), so
	// the docstring has to come back out before recomputing it, the same way
	// pkg/migrate's own hash-verification step does for a v0 record.
	noDocstring, err := normalize.StripDocstring([]byte(obj.NormalizedCode))
	if err != nil {
		report.fail("object normalized_code does not parse: %v", err)
	} else if expectedFnHash := poolhash.Function(noDocstring); expectedFnHash != h {
		report.fail("object normalized_code does not hash to %q (recomputes to %q)", h, expectedFnHash)
	}

	langs, err := s.Languages(h)
	if err != nil {
		report.fail("could not enumerate languages: %v", err)
		return report, nil
	}
	if len(langs) == 0 {
		report.fail("no language has any mapping")
		return report, nil
	}

	identifiersSeen := map[string]bool{}
	anyMapping := false
	for _, lang := range langs {
		mappingHashes, err := s.Mappings(h, lang)
		if err != nil {
			report.fail("language %s: could not enumerate mappings: %v", lang, err)
			continue
		}
		if len(mappingHashes) == 0 {
			report.fail("language %s: no mapping files", lang)
			continue
		}
		for _, mh := range mappingHashes {
			anyMapping = true
			validateMapping(report, s, h, lang, mh, obj, identifiersSeen)
		}
	}
	if !anyMapping {
		report.fail("at least one language must have at least one mapping")
	}

	for canonical := range identifiedCanonicalNames(obj.NormalizedCode) {
		if !identifiersSeen[canonical] {
			report.fail("canonical identifier %q never appears in any mapping's name_mapping", canonical)
		}
	}

	return report, nil
}

func validateMapping(report *ValidationReport, s *poolstore.Store, h, lang, mh string, obj *poolobj.NormalizedFunction, identifiersSeen map[string]bool) {
	mapping, err := s.MappingLoad(h, lang, mh)
	if err != nil {
		report.fail("language %s mapping %s: %v", lang, mh, err)
		return
	}

	recomputed := poolhash.Mapping(poolhash.MappingFields{
		Docstring:    mapping.Docstring,
		NameMapping:  mapping.NameMapping,
		AliasMapping: mapping.AliasMapping,
		Comment:      mapping.Comment,
	})
	if recomputed != mh {
		report.fail("language %s mapping %s: content does not hash to its own path (recomputes to %s)", lang, mh, recomputed)
	}

	for canonical := range mapping.NameMapping {
		identifiersSeen[canonical] = true
	}

	for hash := range referencedPoolHashes(obj.NormalizedCode) {
		if _, ok := mapping.AliasMapping[hash]; !ok {
			report.fail("language %s mapping %s: no alias recorded for referenced function %s", lang, mh, hash)
		}
	}
}

// identifiedCanonicalNames finds every `_bb_v_N`-shaped token referenced in
// normalizedCode, by splitting on non-identifier characters rather than a
// full re-parse: validate only needs to know which canonical names occur,
// not their syntactic role.
func identifiedCanonicalNames(normalizedCode string) map[string]bool {
	out := map[string]bool{}
	for _, tok := range tokenize(normalizedCode) {
		if strings.HasPrefix(tok, "_bb_v_") {
			out[tok] = true
		}
	}
	return out
}

// referencedPoolHashes finds every function hash referenced via an
// `object_<hash>.` call-site prefix in normalizedCode.
func referencedPoolHashes(normalizedCode string) map[string]bool {
	out := map[string]bool{}
	for _, tok := range tokenize(normalizedCode) {
		if strings.HasPrefix(tok, "object_") {
			out[strings.TrimPrefix(tok, "object_")] = true
		}
	}
	return out
}

func tokenize(code string) []string {
	isIdentByte := func(b byte) bool {
		return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
	}
	var toks []string
	start := -1
	for i := 0; i < len(code); i++ {
		if isIdentByte(code[i]) {
			if start == -1 {
				start = i
			}
		} else if start != -1 {
			toks = append(toks, code[start:i])
			start = -1
		}
	}
	if start != -1 {
		toks = append(toks, code[start:])
	}
	return toks
}

// ValidateAllReport summarizes a pool-wide validate run.
type ValidateAllReport struct {
	Reports []*ValidationReport
	Failed  int
}

// ValidateAll validates every v1 function hash in the pool.
func ValidateAll(s *poolstore.Store) (*ValidateAllReport, error) {
	hashes, err := s.ListV1()
	if err != nil {
		return nil, err
	}
	out := &ValidateAllReport{}
	for _, h := range hashes {
		report, err := Validate(s, h)
		if err != nil {
			return nil, err
		}
		out.Reports = append(out.Reports, report)
		if !report.OK {
			out.Failed++
		}
	}
	return out, nil
}
