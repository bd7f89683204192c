// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rule

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/rewriterc/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// KeyCapture is the capture name that holds the storage key of a match.
const KeyCapture = "key"

// 🔄 Definition is the uncompiled form of a Rule
type Definition struct {
	Name    string   // Unique name within a plan
	Match   string   // Pattern text
	Replace string   // Replacement template
	Keys    []string // Optional storage key scope
	Files   string   // Optional doublestar glob over target paths
	Loose   bool     // Whitespace in Match matches any whitespace run
}

// 🎯 Rule is a compiled pattern to replacement mapping
type Rule struct {
	def      Definition
	pattern  *pattern.Pattern
	template *pattern.Template
}

// 🏭 Compile validates and compiles a rule definition
func Compile(def Definition) (*Rule, error) {
	if def.Name == "" {
		return nil, errors.Errorf("rule name is required")
	}
	if def.Match == "" {
		return nil, errors.Errorf("rule %s: match is required", def.Name)
	}

	var opts []pattern.Option
	if def.Loose {
		opts = append(opts, pattern.Loose())
	}
	p, err := pattern.Compile(def.Match, opts...)
	if err != nil {
		return nil, errors.Errorf("rule %s: %w", def.Name, err)
	}

	t, err := pattern.ParseTemplate(def.Replace)
	if err != nil {
		return nil, errors.Errorf("rule %s: %w", def.Name, err)
	}
	if err := t.Check(p); err != nil {
		return nil, errors.Errorf("rule %s: %w", def.Name, err)
	}

	if def.Files != "" && !doublestar.ValidatePattern(def.Files) {
		return nil, errors.Errorf("rule %s: invalid files glob %q", def.Name, def.Files)
	}

	return &Rule{def: def, pattern: p, template: t}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(def Definition) *Rule {
	r, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rule) Name() string                { return r.def.Name }
func (r *Rule) Definition() Definition      { return r.def }
func (r *Rule) Pattern() *pattern.Pattern   { return r.pattern }
func (r *Rule) Template() *pattern.Template { return r.template }

// AppliesTo reports whether the rule's files glob accepts path.
func (r *Rule) AppliesTo(path string) bool {
	if r.def.Files == "" {
		return true
	}
	ok, err := doublestar.Match(r.def.Files, filepath.ToSlash(path))
	return err == nil && ok
}

// Find returns the matches of the rule in text that fall inside the rule's own
// key scope and the given target keys.
func (r *Rule) Find(text string, keys []string) []pattern.Match {
	return r.pattern.FindAllFunc(text, r.accept(keys))
}

// Apply rewrites every in-scope match and returns the new text and the number
// of replacements.
func (r *Rule) Apply(text string, keys []string) (string, int) {
	return pattern.Replace(text, r.pattern, r.template, r.accept(keys))
}

func (r *Rule) accept(keys []string) func(pattern.Match) bool {
	return func(m pattern.Match) bool {
		return inScope(m, r.def.Keys) && inScope(m, keys)
	}
}

// inScope checks a match against a key list. Patterns that capture the key are
// checked by value; literal patterns must mention one of the keys as a quoted
// string.
func inScope(m pattern.Match, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	if k, ok := m.Captures[KeyCapture]; ok {
		return slices.Contains(keys, k)
	}
	for _, k := range keys {
		for _, q := range []string{"'", `"`, "`"} {
			if strings.Contains(m.Text, q+k+q) {
				return true
			}
		}
	}
	return false
}
