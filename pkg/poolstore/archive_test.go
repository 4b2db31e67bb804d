package poolstore

import (
	"bytes"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := New(t.TempDir())
	hash := "f00dbabef00dbabe"
	if _, _, err := src.SaveFunction(testInput(hash, "eng", "doc")); err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}

	var buf bytes.Buffer
	if err := src.Export(hash, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := New(t.TempDir())
	if err := dst.Import(hash, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Import: %v", err)
	}

	obj, err := dst.FunctionLoad(hash)
	if err != nil {
		t.Fatalf("FunctionLoad after import: %v", err)
	}
	if obj.Hash != hash {
		t.Errorf("imported object hash = %q, want %q", obj.Hash, hash)
	}

	langs, err := dst.Languages(hash)
	if err != nil {
		t.Fatalf("Languages after import: %v", err)
	}
	if len(langs) != 1 || langs[0] != "eng" {
		t.Errorf("Languages after import = %v, want [eng]", langs)
	}
}
