package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/codepool/pkg/poolcfg"
	"github.com/odvcencio/codepool/pkg/poolstore"
)

// nowRFC3339 stamps metadata.created the way spec.md §4.6 asks for "now":
// a wall-clock read, not a core concern, so it lives at the CLI boundary
// rather than inside pkg/poolstore or pkg/migrate.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// openStore resolves POOL_ROOT (pkg/poolcfg) and opens the store rooted
// there. Every command shares this rather than each re-resolving the root,
// the same way every got subcommand opens its repo via repo.Open(".").
func openStore() (*poolstore.Store, error) {
	root, err := poolcfg.Root()
	if err != nil {
		return nil, err
	}
	return poolstore.New(root), nil
}

// splitHashOrPathAndLang splits a "<hash-or-path>@<lang>" argument on its
// last '@', mirroring original_source/ouverture.py's add_function
// (`file_path_with_lang.rsplit('@', 1)`), and validates the language code
// against spec.md §3's free-form charset (letters, digits, -, _; 1-256
// characters) rather than a fixed ISO-639-3 length.
func splitHashOrPathAndLang(arg string) (value, lang string, err error) {
	idx := strings.LastIndex(arg, "@")
	if idx < 0 {
		return "", "", fmt.Errorf("missing language suffix: expected <value>@<lang>, got %q", arg)
	}
	value, lang = arg[:idx], arg[idx+1:]
	if err := poolstore.ValidateLanguageCode(lang); err != nil {
		return "", "", err
	}
	return value, lang, nil
}
