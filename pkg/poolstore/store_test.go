package poolstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/codepool/pkg/poolobj"
)

func testInput(hash, lang, original string) SaveFunctionInput {
	return SaveFunctionInput{
		FunctionHash:   hash,
		Language:       lang,
		NormalizedCode: "def _bb_v_0(_bb_v_1):\n    \"\"\"canonical function\"\"\"\n    return _bb_v_1\n",
		Docstring:      original,
		NameMapping:    map[string]string{"_bb_v_0": "f", "_bb_v_1": "x"},
		AliasMapping:   map[string]string{},
		Metadata:       poolobj.Metadata{Created: "2026-01-01T00:00:00Z", Author: "tester"},
	}
}

func TestSaveAndLoadFunction(t *testing.T) {
	s := New(t.TempDir())
	hash := "abcd1234deadbeef"

	fh, mh, err := s.SaveFunction(testInput(hash, "eng", "Return x."))
	if err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}
	if fh != hash {
		t.Errorf("function hash = %q, want %q", fh, hash)
	}

	obj, err := s.FunctionLoad(hash)
	if err != nil {
		t.Fatalf("FunctionLoad: %v", err)
	}
	if obj.Hash != hash || obj.SchemaVersion != poolobj.SchemaVersion {
		t.Errorf("unexpected object: %+v", obj)
	}

	mapping, err := s.MappingLoad(hash, "eng", mh)
	if err != nil {
		t.Fatalf("MappingLoad: %v", err)
	}
	if mapping.Docstring != "Return x." {
		t.Errorf("Docstring = %q", mapping.Docstring)
	}
}

func TestSaveFunctionDeduplicatesIdenticalMapping(t *testing.T) {
	s := New(t.TempDir())
	hash := "feedface00112233"
	in := testInput(hash, "eng", "Return x.")

	_, mh1, err := s.SaveFunction(in)
	if err != nil {
		t.Fatalf("first SaveFunction: %v", err)
	}
	_, mh2, err := s.SaveFunction(in)
	if err != nil {
		t.Fatalf("second SaveFunction: %v", err)
	}
	if mh1 != mh2 {
		t.Errorf("mapping hash changed on identical resave: %q != %q", mh1, mh2)
	}

	hashes, err := s.Mappings(hash, "eng")
	if err != nil {
		t.Fatalf("Mappings: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("Mappings = %v, want exactly one deduplicated entry", hashes)
	}
}

func TestSaveFunctionMultiLanguage(t *testing.T) {
	s := New(t.TempDir())
	hash := "0123456789abcdef"

	if _, _, err := s.SaveFunction(testInput(hash, "eng", "Return x.")); err != nil {
		t.Fatalf("SaveFunction eng: %v", err)
	}
	if _, _, err := s.SaveFunction(testInput(hash, "fra", "Retourne x.")); err != nil {
		t.Fatalf("SaveFunction fra: %v", err)
	}

	langs, err := s.Languages(hash)
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	if len(langs) != 2 || langs[0] != "eng" || langs[1] != "fra" {
		t.Errorf("Languages = %v, want [eng fra]", langs)
	}
}

func TestLatestMappingBreaksTiesOnHash(t *testing.T) {
	s := New(t.TempDir())
	hash := "11112222333344445555"

	if _, _, err := s.SaveFunction(testInput(hash, "eng", "formal")); err != nil {
		t.Fatalf("save formal: %v", err)
	}
	if _, _, err := s.SaveFunction(testInput(hash, "eng", "casual")); err != nil {
		t.Fatalf("save casual: %v", err)
	}

	mappings, err := s.Mappings(hash, "eng")
	if err != nil {
		t.Fatalf("Mappings: %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("Mappings = %v, want 2 distinct docstring variants", mappings)
	}

	// Force identical mtimes so the tie-break rule (lexicographically larger
	// hash wins) is actually exercised rather than the mtime ordering.
	same := time.Now()
	for _, mh := range mappings {
		dir, err := s.mappingDir(hash, "eng", mh)
		if err != nil {
			t.Fatalf("mappingDir: %v", err)
		}
		if err := os.Chtimes(filepath.Join(dir, "mapping.json"), same, same); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	want := mappings[0]
	if mappings[1] > want {
		want = mappings[1]
	}

	got, _, err := s.LatestMapping(hash, "eng")
	if err != nil {
		t.Fatalf("LatestMapping: %v", err)
	}
	if got != want {
		t.Errorf("LatestMapping = %q, want %q (lexicographically larger)", got, want)
	}
}

func TestDetectVersionV1AndNotFound(t *testing.T) {
	s := New(t.TempDir())
	hash := "aaaa000011112222"

	v, err := s.DetectVersion(hash)
	if err != nil {
		t.Fatalf("DetectVersion: %v", err)
	}
	if v != NotFound {
		t.Errorf("DetectVersion on empty store = %v, want NotFound", v)
	}

	if _, _, err := s.SaveFunction(testInput(hash, "eng", "doc")); err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}
	v, err = s.DetectVersion(hash)
	if err != nil {
		t.Fatalf("DetectVersion: %v", err)
	}
	if v != V1 {
		t.Errorf("DetectVersion after save = %v, want V1", v)
	}
}

func TestFunctionLoadDetectsCorruption(t *testing.T) {
	s := New(t.TempDir())
	hash := "deadbeefcafebabe"
	if _, _, err := s.SaveFunction(testInput(hash, "eng", "doc")); err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}

	fd, err := s.functionDir(hash)
	if err != nil {
		t.Fatalf("functionDir: %v", err)
	}
	objPath := filepath.Join(fd, "object.json")
	data, err := os.ReadFile(objPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	tampered := []byte(`{"schema_version":1,"hash":"0000000000000000","hash_algorithm":"sha256","normalized_code":"x","metadata":{}}`)
	_ = data
	if err := os.WriteFile(objPath, tampered, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = s.FunctionLoad(hash)
	if err == nil {
		t.Fatal("expected Corruption error for hash/path mismatch")
	}
	if _, ok := err.(*CorruptionError); !ok {
		t.Errorf("expected *CorruptionError, got %T: %v", err, err)
	}
}
