// Package migrate implements spec.md §4.6: migrating a legacy v0 record
// (one JSON file per function hash, normalized code with its docstring
// still embedded, plus per-language docstring/name_mapping/alias_mapping
// tables) into the v1 layout pkg/poolstore reads and writes, and validating
// an existing v1 object tree for internal consistency. Grounded on the
// teacher's pkg/object/store_pack.go Verify/VerifySummary pair, generalized
// from a single pass/fail check to a migrate-then-report workflow since a
// v0 record can yield multiple per-language mapping writes in one call.
package migrate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/codepool/pkg/canon"
	"github.com/odvcencio/codepool/pkg/normalize"
	"github.com/odvcencio/codepool/pkg/poolhash"
	"github.com/odvcencio/codepool/pkg/poolobj"
	"github.com/odvcencio/codepool/pkg/poolstore"
)

// Options configures one migration (spec.md §4.6 migrate_v0_to_v1).
type Options struct {
	// KeepV0, if true, leaves the legacy v0 record in place after a
	// successful migration. If false, the record is renamed to a .bak
	// sibling once the v1 object has been written and verified.
	KeepV0 bool

	// DryRun, if true, runs the v0 record checks (hash verification and
	// docstring sentinelization) but writes nothing, so the write-path and
	// v1 validation checks are not run: the report describes what would
	// have happened.
	DryRun bool

	// Author is recorded as the v1 object's metadata.author. The caller
	// resolves this from the environment (pkg/poolcfg / the CLI boundary),
	// the same way the teacher's Repo.Commit takes author as a parameter
	// rather than reading the environment itself.
	Author string
}

// Report describes the outcome of one MigrateV0ToV1 call.
type Report struct {
	FunctionHash  string
	AlreadyV1     bool
	DryRun        bool
	Languages     []string
	MappingHashes map[string]string // language -> mapping hash written
}

// MigrateV0ToV1 implements spec.md §4.6 migrate_v0_to_v1.
func MigrateV0ToV1(s *poolstore.Store, h string, opts Options) (*Report, error) {
	version, err := s.DetectVersion(h)
	if err != nil {
		return nil, err
	}
	if version == poolstore.V1 {
		return &Report{FunctionHash: h, AlreadyV1: true}, nil
	}
	if version == poolstore.NotFound {
		return nil, fmt.Errorf("%w: %s", poolstore.ErrNotFound, h)
	}

	rec, err := s.ReadV0(h)
	if err != nil {
		return nil, err
	}

	// Step 1: verify the record's stored hash matches the hash recomputed
	// from its own normalized code with the docstring removed.
	noDocstring, err := normalize.StripDocstring([]byte(rec.NormalizedCode))
	if err != nil {
		return nil, fmt.Errorf("migrate: strip docstring from v0 record %s: %w", h, err)
	}
	recomputed := poolhash.Function(noDocstring)
	if recomputed != rec.Hash || rec.Hash != h {
		return nil, &HashMismatchError{Hash: rec.Hash, Recomputed: recomputed}
	}

	// object.json's normalized_code carries the sentinel docstring, never the
	// author's real one and never the docstring stripped out entirely
	// (spec.md §4.2 step 2) — a v0 record's normalized_code has the author's
	// docstring still embedded, so it needs sentinelizing, not stripping.
	sentinelized, err := normalize.SentinelizeDocstring([]byte(rec.NormalizedCode), normalize.DefaultDocstringSentinel)
	if err != nil {
		return nil, fmt.Errorf("migrate: sentinelize docstring for v0 record %s: %w", h, err)
	}

	report := &Report{
		FunctionHash:  h,
		DryRun:        opts.DryRun,
		MappingHashes: make(map[string]string, len(rec.Docstrings)),
	}
	for lang := range rec.Docstrings {
		report.Languages = append(report.Languages, lang)
	}

	if opts.DryRun {
		// "equivalently: do not perform them, only simulate and report"
		// (spec.md §4.6 step 4) — every check above already ran for real.
		return report, nil
	}

	// Step 2: a fresh object.json, created now, authored by the caller's
	// resolved author, with empty tags/dependencies (a v0 record never
	// carried either).
	metadata := poolobj.Metadata{
		Created: time.Now().UTC().Format(time.RFC3339),
		Author:  opts.Author,
	}

	// Step 3: for each language in the v0 record, call the write path once.
	for lang, docstring := range rec.Docstrings {
		in := poolstore.SaveFunctionInput{
			FunctionHash:   h,
			Language:       lang,
			NormalizedCode: sentinelized,
			Docstring:      docstring,
			NameMapping:    rec.NameMappings[lang],
			// A v0 record never carried insertion order (spec.md §3's
			// ordered-mapping invariant postdates it); canonicalNameOrder
			// recovers it from the _bb_v_N ordinal each key already carries,
			// rather than falling back to a lexicographic sort that would
			// place _bb_v_10 before _bb_v_2.
			NameOrder:    canonicalNameOrder(rec.NameMappings[lang]),
			AliasMapping: rec.AliasMappings[lang],
			Metadata:     metadata,
		}
		_, mh, err := s.SaveFunction(in)
		if err != nil {
			return nil, fmt.Errorf("migrate: write v1 mapping for %s/%s: %w", h, lang, err)
		}
		report.MappingHashes[lang] = mh
	}

	if !opts.KeepV0 {
		vr, err := Validate(s, h)
		if err != nil {
			return nil, err
		}
		if !vr.OK {
			return nil, fmt.Errorf("migrate: v1 object %s failed validation: %s", h, strings.Join(vr.Issues, "; "))
		}
		if err := s.BackupV0(h); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// canonicalNameOrder sorts a v0 name_mapping's canonical ids by their
// numeric ordinal ("_bb_v_0" before "_bb_v_2" before "_bb_v_10"), since a v0
// record never stored allocation order directly. Any key that does not have
// the expected canonical shape sorts after every ordinal-sorted key, in
// lexicographic order, rather than being dropped.
func canonicalNameOrder(names map[string]string) []string {
	var ordinal, other []string
	for k := range names {
		if canon.IsCanonical(k) {
			ordinal = append(ordinal, k)
		} else {
			other = append(other, k)
		}
	}
	sort.Slice(ordinal, func(i, j int) bool {
		return canonicalOrdinal(ordinal[i]) < canonicalOrdinal(ordinal[j])
	})
	sort.Strings(other)
	return append(ordinal, other...)
}

func canonicalOrdinal(name string) int {
	rest := strings.TrimPrefix(name, canon.Prefix+"_v_")
	n, err := strconv.Atoi(rest)
	if err != nil {
		return -1
	}
	return n
}

// AllReport summarizes a pool-wide migrate_all run.
type AllReport struct {
	Migrated []string
	Skipped  []string
	Failed   map[string]error
}

// MigrateAll implements spec.md §4.6 migrate_all: enumerate every v0 record
// and migrate each, reporting counts of migrated/skipped(already-v1)/failed.
func MigrateAll(s *poolstore.Store, opts Options) (*AllReport, error) {
	hashes, err := s.ListV0()
	if err != nil {
		return nil, err
	}

	out := &AllReport{Failed: map[string]error{}}
	for _, h := range hashes {
		report, err := MigrateV0ToV1(s, h, opts)
		if err != nil {
			out.Failed[h] = err
			continue
		}
		if report.AlreadyV1 {
			out.Skipped = append(out.Skipped, h)
			continue
		}
		out.Migrated = append(out.Migrated, h)
	}
	return out, nil
}
