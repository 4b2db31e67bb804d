package poolcfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootPrefersPoolRootEnv(t *testing.T) {
	t.Setenv("POOL_ROOT", "/tmp/custom-pool")
	t.Setenv("XDG_DATA_HOME", "/tmp/should-not-be-used")

	root, err := Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root != "/tmp/custom-pool" {
		t.Errorf("Root() = %q, want /tmp/custom-pool", root)
	}
}

func TestRootFallsBackToXDGDataHome(t *testing.T) {
	t.Setenv("POOL_ROOT", "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	root, err := Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	want := filepath.Join("/tmp/xdg-data", "codepool")
	if root != want {
		t.Errorf("Root() = %q, want %q", root, want)
	}
}

func TestRootFallsBackToHomeLocalShare(t *testing.T) {
	t.Setenv("POOL_ROOT", "")
	t.Setenv("XDG_DATA_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	root, err := Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "codepool")
	if root != want {
		t.Errorf("Root() = %q, want %q", root, want)
	}
}

func TestAuthorPrefersConfigThenEnvThenUser(t *testing.T) {
	t.Setenv("POOL_AUTHOR", "env-author")
	if got := Author(&Config{DefaultAuthor: "cfg-author"}); got != "cfg-author" {
		t.Errorf("Author with config override = %q, want cfg-author", got)
	}
	if got := Author(nil); got != "env-author" {
		t.Errorf("Author with no config = %q, want env-author", got)
	}
}

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultAuthor != "" || cfg.DefaultLanguage != "" {
		t.Errorf("Load of missing file = %+v, want zero value", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{DefaultAuthor: "alice", DefaultLanguage: "eng"}

	if err := Save(root, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load after Save = %+v, want %+v", loaded, cfg)
	}

	if _, err := os.Stat(filepath.Join(root, ".codepoolrc.toml")); err != nil {
		t.Errorf("config file not found on disk: %v", err)
	}
}
