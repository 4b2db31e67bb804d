package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/odvcencio/codepool/pkg/normalize"
	"github.com/odvcencio/codepool/pkg/poolcfg"
	"github.com/odvcencio/codepool/pkg/poolhash"
	"github.com/odvcencio/codepool/pkg/poolobj"
	"github.com/odvcencio/codepool/pkg/poolstore"
)

func TestValidateCmdReportsOKAfterAdd(t *testing.T) {
	poolRoot := t.TempDir()
	t.Setenv("POOL_ROOT", poolRoot)

	normalized, err := normalize.Normalize([]byte("def f(x):\n    \"\"\"Return x.\"\"\"\n    return x\n"), normalize.Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	hash := poolhash.Function(normalized.NormalizedCodeNoDocstring)

	s := poolstore.New(poolRoot)
	if _, _, err := s.SaveFunction(poolstore.SaveFunctionInput{
		FunctionHash:   hash,
		Language:       "eng",
		NormalizedCode: normalized.NormalizedCode,
		Docstring:      normalized.Docstring,
		NameMapping:    normalized.NameMapping,
		AliasMapping:   map[string]string{},
		Metadata:       poolobj.Metadata{Created: "2026-01-01T00:00:00Z", Author: poolcfg.Author(nil)},
	}); err != nil {
		t.Fatalf("SaveFunction: %v", err)
	}

	var out bytes.Buffer
	validateCmd := newValidateCmd()
	validateCmd.SetOut(&out)
	validateCmd.SetArgs([]string{hash})
	if err := validateCmd.Execute(); err != nil {
		t.Fatalf("validate Execute: %v\noutput:\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "ok: "+hash) {
		t.Errorf("validate output = %q, want to contain 'ok: %s'", out.String(), hash)
	}
}

func TestValidateCmdFailsForUnknownHash(t *testing.T) {
	t.Setenv("POOL_ROOT", t.TempDir())

	var out bytes.Buffer
	validateCmd := newValidateCmd()
	validateCmd.SetOut(&out)
	validateCmd.SetArgs([]string{"0000000000000000"})
	if err := validateCmd.Execute(); err == nil {
		t.Fatal("expected validate to fail for an unknown hash")
	}
}
