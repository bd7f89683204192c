// Package diff renders unified diffs of rewritten files for dry runs.
// It uses github.com/pmezard/go-difflib/difflib to produce classic unified
// patches (---/+++ headers, @@ hunks, lines prefixed with ' ', '-', '+').
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Options controls patch generation.
type Options struct {
	// Context is the number of context lines around each hunk. 0 means 3.
	Context int

	// MaxBytes skips the diff when before+after exceed it. 0 means no limit.
	MaxBytes int
}

// Unified produces a unified patch from before to after for the file at path.
// Identical inputs produce the empty string.
func Unified(path string, before, after []byte, opt Options) string {
	if string(before) == string(after) {
		return ""
	}
	if opt.MaxBytes > 0 && len(before)+len(after) > opt.MaxBytes {
		return omitted(path)
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(before)),
		B:        splitLinesKeepNL(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return omitted(path)
	}
	return s
}

// splitLinesKeepNL splits into lines and keeps newline characters, which
// produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func omitted(path string) string {
	return fmt.Sprintf("--- a/%s\n+++ b/%s\n@@\n# diff omitted\n", path, path)
}
