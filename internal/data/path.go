package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading "~" to the home directory and substitutes
// $VAR and ${VAR} references. Undefined variables are an error.
func ExpandPath(path string) (string, error) {
	var missing []string
	expanded := os.Expand(path, func(name string) string {
		v, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("failed to expand path %q: undefined variable %s", path, strings.Join(missing, ", "))
	}

	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand path %q: %w", path, err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
	}

	return expanded, nil
}
