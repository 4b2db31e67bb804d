package migrate

import (
	"testing"

	"github.com/odvcencio/codepool/pkg/normalize"
	"github.com/odvcencio/codepool/pkg/poolhash"
	"github.com/odvcencio/codepool/pkg/poolobj"
	"github.com/odvcencio/codepool/pkg/poolstore"
)

func TestValidatePassesForWellFormedObject(t *testing.T) {
	s := poolstore.New(t.TempDir())

	src := []byte("def f(x):\n    \"\"\"Return x.\"\"\"\n    return x\n")
	normalized, err := normalize.Normalize(src, normalize.Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	h := poolhash.Function(normalized.NormalizedCodeNoDocstring)

	_, _, err = s.SaveFunction(poolstore.SaveFunctionInput{
		FunctionHash:   h,
		Language:       "eng",
		NormalizedCode: normalized.NormalizedCode,
		Docstring:      normalized.Docstring,
		NameMapping:    normalized.NameMapping,
		AliasMapping:   map[string]string{},
		Metadata:       poolobj.Metadata{Created: "2026-01-01T00:00:00Z", Author: "tester"},
	})
	if err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}

	report, err := Validate(s, h)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !report.OK {
		t.Errorf("report.OK = false, issues = %v", report.Issues)
	}
}

func TestValidateDetectsMissingNameMappingEntry(t *testing.T) {
	s := poolstore.New(t.TempDir())

	src := []byte("def f(x):\n    \"\"\"Return x.\"\"\"\n    return x\n")
	normalized, err := normalize.Normalize(src, normalize.Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	h := poolhash.Function(normalized.NormalizedCodeNoDocstring)

	incompleteMapping := map[string]string{}
	for k, v := range normalized.NameMapping {
		incompleteMapping[k] = v
		break // keep only one entry, dropping the rest.
	}

	_, _, err = s.SaveFunction(poolstore.SaveFunctionInput{
		FunctionHash:   h,
		Language:       "eng",
		NormalizedCode: normalized.NormalizedCode,
		Docstring:      normalized.Docstring,
		NameMapping:    incompleteMapping,
		AliasMapping:   map[string]string{},
		Metadata:       poolobj.Metadata{Created: "2026-01-01T00:00:00Z", Author: "tester"},
	})
	if err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}

	report, err := Validate(s, h)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.OK {
		t.Fatal("expected validation to fail with an incomplete name_mapping")
	}
}

func TestValidateReportsNotFound(t *testing.T) {
	s := poolstore.New(t.TempDir())

	report, err := Validate(s, "0000000000000000")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.OK {
		t.Fatal("expected validation of a nonexistent hash to fail")
	}
}

func TestValidateAllCountsFailures(t *testing.T) {
	s := poolstore.New(t.TempDir())

	src := []byte("def f(x):\n    \"\"\"Return x.\"\"\"\n    return x\n")
	normalized, err := normalize.Normalize(src, normalize.Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	h := poolhash.Function(normalized.NormalizedCodeNoDocstring)

	_, _, err = s.SaveFunction(poolstore.SaveFunctionInput{
		FunctionHash:   h,
		Language:       "eng",
		NormalizedCode: normalized.NormalizedCode,
		Docstring:      normalized.Docstring,
		NameMapping:    normalized.NameMapping,
		AliasMapping:   map[string]string{},
		Metadata:       poolobj.Metadata{Created: "2026-01-01T00:00:00Z", Author: "tester"},
	})
	if err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}

	all, err := ValidateAll(s)
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	if len(all.Reports) != 1 {
		t.Fatalf("Reports = %v, want exactly one", all.Reports)
	}
	if all.Failed != 0 {
		t.Errorf("Failed = %d, want 0", all.Failed)
	}
}
