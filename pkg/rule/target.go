package rule

import (
	"gitlab.com/tozd/go/errors"
)

// 📄 Target is a statically declared file and the rules relevant to it
type Target struct {
	Path   string   // File path, unique within a plan
	Keys   []string // Storage keys used in the file; empty means any key
	Rules  []string // Rule names to apply; empty means every rule
	Import string   // Import declaration override
}

// ValidateTargets checks that paths are unique and non-empty.
func ValidateTargets(targets []Target) error {
	seen := make(map[string]bool, len(targets))
	for i, t := range targets {
		if t.Path == "" {
			return errors.Errorf("target %d: path is required", i)
		}
		if seen[t.Path] {
			return errors.Errorf("duplicate target %q", t.Path)
		}
		seen[t.Path] = true
	}
	return nil
}
