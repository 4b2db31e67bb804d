package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAddThenGetRoundTrip(t *testing.T) {
	poolRoot := t.TempDir()
	t.Setenv("POOL_ROOT", poolRoot)

	srcPath := filepath.Join(t.TempDir(), "greet.py")
	source := "def greet(name):\n    \"\"\"Greet name.\"\"\"\n    return 'hi ' + name\n"
	if err := os.WriteFile(srcPath, []byte(source), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var addOut bytes.Buffer
	addCmd := newAddCmd()
	addCmd.SetOut(&addOut)
	addCmd.SetArgs([]string{srcPath + "@eng"})
	if err := addCmd.Execute(); err != nil {
		t.Fatalf("add Execute: %v\noutput:\n%s", err, addOut.String())
	}

	lines := strings.Split(strings.TrimSpace(addOut.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "function ") {
		t.Fatalf("add output = %q, want two lines starting with 'function '/'mapping '", addOut.String())
	}
	hash := strings.TrimPrefix(lines[0], "function ")

	var getOut bytes.Buffer
	getCmd := newGetCmd()
	getCmd.SetOut(&getOut)
	getCmd.SetArgs([]string{hash + "@eng"})
	if err := getCmd.Execute(); err != nil {
		t.Fatalf("get Execute: %v\noutput:\n%s", err, getOut.String())
	}
	if !strings.Contains(getOut.String(), "def greet(name):") {
		t.Errorf("get output = %q, want original identifiers restored", getOut.String())
	}
	if !strings.Contains(getOut.String(), "Greet name.") {
		t.Errorf("get output = %q, want original docstring restored", getOut.String())
	}
}

func TestAddRejectsMissingLanguageSuffix(t *testing.T) {
	t.Setenv("POOL_ROOT", t.TempDir())

	addCmd := newAddCmd()
	var out bytes.Buffer
	addCmd.SetOut(&out)
	addCmd.SetErr(&out)
	addCmd.SetArgs([]string{"missing_suffix.py"})
	if err := addCmd.Execute(); err == nil {
		t.Fatal("expected an error for a path with no @lang suffix")
	}
}
