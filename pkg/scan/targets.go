package scan

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandTargets resolves each pattern to existing regular files. Plain paths
// are kept when they exist; glob patterns ("/var/log/wtmp*", "logs/**/btmp")
// expand in lexical order. Duplicates are dropped, first occurrence wins.
func ExpandTargets(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(path string) {
		if seen[path] {
			return
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid target pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// Patterns without metacharacters that do not exist match nothing.
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	return out, nil
}
