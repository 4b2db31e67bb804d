// Package poolcfg resolves where a pool lives and who is acting on it
// (spec.md §6 "Environment inputs"), and an optional per-pool config file.
// The root-resolution shape follows the teacher's pkg/repo/init.go Open/Init
// (environment/filesystem-driven location, no hidden global state); the
// config file follows pkg/repo/config.go's ReadConfig/WriteConfig pair,
// upgraded from JSON to TOML since no example repo's JSON config component
// survives into this tree verbatim (SPEC_FULL.md §10.3).
package poolcfg

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the optional per-pool settings file (POOL_ROOT/.codepoolrc.toml).
type Config struct {
	// DefaultAuthor overrides the environment-derived author for `add`/
	// `migrate` when set.
	DefaultAuthor string `toml:"default_author,omitempty"`

	// DefaultLanguage is read from and written to the config file; no
	// command consults it, and `get` always requires an explicit @<lang>.
	DefaultLanguage string `toml:"default_language,omitempty"`

	// HashAlgorithm is reserved for future extension (spec.md §3 only
	// defines sha256 today); present so a config file written against a
	// future algorithm choice round-trips without data loss.
	HashAlgorithm string `toml:"hash_algorithm,omitempty"`
}

// Root resolves POOL_ROOT: the environment variable if set, otherwise
// $XDG_DATA_HOME/codepool, otherwise ~/.local/share/codepool.
func Root() (string, error) {
	if root := os.Getenv("POOL_ROOT"); root != "" {
		return root, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "codepool"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("poolcfg: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "codepool"), nil
}

// Author resolves the identity `add`/`migrate` record as metadata.author:
// a loaded Config's DefaultAuthor if set, else $POOL_AUTHOR, else the
// current OS user's username.
func Author(cfg *Config) string {
	if cfg != nil && cfg.DefaultAuthor != "" {
		return cfg.DefaultAuthor
	}
	if author := os.Getenv("POOL_AUTHOR"); author != "" {
		return author
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

func configPath(root string) string {
	return filepath.Join(root, ".codepoolrc.toml")
}

// Load reads root's .codepoolrc.toml. A missing file returns an empty,
// valid Config rather than an error (spec.md has no config file at all;
// its absence is always a degenerate default, not a fault).
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(configPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("poolcfg: read %s: %w", configPath(root), err)
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("poolcfg: parse %s: %w", configPath(root), err)
	}
	return &cfg, nil
}

// Save atomically writes cfg to root's .codepoolrc.toml, creating root if
// needed, via the same write-temp-then-rename discipline every other
// publication path in this tree uses.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("poolcfg: mkdir %s: %w", root, err)
	}

	tmp, err := os.CreateTemp(root, ".codepoolrc-tmp-*")
	if err != nil {
		return fmt.Errorf("poolcfg: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("poolcfg: encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("poolcfg: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, configPath(root)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("poolcfg: rename into place: %w", err)
	}
	return nil
}
