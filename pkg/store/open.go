package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Open returns the Document described by uri:
//
//	jsonfile:/path/to/budget_data.json   (default, "" means DefaultPath)
//	sqlite:/path/to/budget.db
//	redis:localhost:6379
//	memory:
//
// A uri without a scheme is taken as a json file path.
func Open(uri string) (Document, error) {
	scheme, rest := "jsonfile", uri
	if bits := strings.SplitN(uri, ":", 2); len(bits) == 2 && isScheme(bits[0]) {
		scheme, rest = bits[0], bits[1]
	}

	switch scheme {
	case "jsonfile":
		if rest == "" {
			rest = DefaultPath()
		}
		return NewJSONFile(expandHome(rest)), nil
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("sqlite store needs a path, eg. sqlite:/path/budget.db")
		}
		return NewSQLite(expandHome(rest))
	case "redis":
		if rest == "" {
			rest = "localhost:6379"
		}
		return NewRedis(rest)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store %q, expected one of [jsonfile: sqlite: redis: memory:]", scheme)
}

// isScheme keeps "C:\..." and plain paths from being read as a scheme.
func isScheme(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
