package poolhash

import (
	"strings"
	"testing"
)

func TestSumDeterministic(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	if a != b {
		t.Errorf("Sum not deterministic: %q != %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Sum length = %d, want 64", len(a))
	}
}

func TestFunctionDiffersOnContent(t *testing.T) {
	a := Function("def _bb_v_0():\n    pass\n")
	b := Function("def _bb_v_0():\n    return 1\n")
	if a == b {
		t.Error("different normalized code produced the same function hash")
	}
}

func TestMappingHashStableAndSensitiveToFields(t *testing.T) {
	base := MappingFields{
		Docstring:    "Sum a list",
		NameMapping:  map[string]string{"_bb_v_0": "sum_list", "_bb_v_1": "items"},
		AliasMapping: map[string]string{},
		Comment:      "",
	}
	h1 := Mapping(base)
	h2 := Mapping(base)
	if h1 != h2 {
		t.Errorf("Mapping hash not deterministic: %q != %q", h1, h2)
	}

	withComment := base
	withComment.Comment = "formal variant"
	h3 := Mapping(withComment)
	if h3 == h1 {
		t.Error("changing comment did not change mapping hash")
	}
}

func TestCanonicalJSONSortsKeysAndKeepsUnicode(t *testing.T) {
	fields := MappingFields{
		Docstring:    "Somme d'une liste de réels",
		NameMapping:  map[string]string{"_bb_v_0": "somme_liste"},
		AliasMapping: map[string]string{},
		Comment:      "",
	}
	out := string(CanonicalJSON(fields))

	if strings.Contains(out, `\u`) {
		t.Errorf("canonical JSON escaped non-ASCII text: %s", out)
	}
	if !strings.Contains(out, "Somme d'une liste de réels") {
		t.Errorf("canonical JSON lost unicode content: %s", out)
	}
	// Spaces inside the docstring value are content; any other space is not.
	if strings.Contains(strings.Replace(out, fields.Docstring, "", 1), " ") {
		t.Errorf("canonical JSON contains insignificant whitespace: %s", out)
	}

	// alias_mapping sorts before comment, before docstring, before name_mapping.
	aliasIdx := strings.Index(out, `"alias_mapping"`)
	commentIdx := strings.Index(out, `"comment"`)
	docIdx := strings.Index(out, `"docstring"`)
	nameIdx := strings.Index(out, `"name_mapping"`)
	if !(aliasIdx < commentIdx && commentIdx < docIdx && docIdx < nameIdx) {
		t.Errorf("canonical JSON keys are not sorted: %s", out)
	}
}

func TestMappingHashMatchesLiteralFormat(t *testing.T) {
	fields := MappingFields{
		Docstring:    "d",
		NameMapping:  map[string]string{"_bb_v_0": "f"},
		AliasMapping: map[string]string{},
		Comment:      "c",
	}
	want := Sum(CanonicalJSON(fields))
	got := Mapping(fields)
	if got != want {
		t.Errorf("Mapping(fields) = %q, want %q", got, want)
	}
}
