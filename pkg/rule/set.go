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
	"gitlab.com/tozd/go/errors"
)

// 📊 Count is the number of replacements one rule made
type Count struct {
	Rule string
	N    int
}

// Counts holds per-rule counts in application order.
type Counts []Count

// Total sums all counts.
func (c Counts) Total() int {
	total := 0
	for _, cnt := range c {
		total += cnt.N
	}
	return total
}

// Fired returns the number of rules that made at least one replacement.
func (c Counts) Fired() int {
	n := 0
	for _, cnt := range c {
		if cnt.N > 0 {
			n++
		}
	}
	return n
}

// 📚 Set is an ordered collection of rules. Rules run in insertion order and
// every rule sees the output of the rules before it.
type Set struct {
	rules  []*Rule
	byName map[string]*Rule
}

// 🏭 NewSet builds a set, rejecting duplicate names
func NewSet(rules ...*Rule) (*Set, error) {
	s := &Set{byName: make(map[string]*Rule, len(rules))}
	for _, r := range rules {
		if _, dup := s.byName[r.Name()]; dup {
			return nil, errors.Errorf("duplicate rule %q", r.Name())
		}
		s.byName[r.Name()] = r
		s.rules = append(s.rules, r)
	}
	return s, nil
}

// Rules returns the rules in application order.
func (s *Set) Rules() []*Rule {
	return append([]*Rule(nil), s.rules...)
}

func (s *Set) Len() int {
	return len(s.rules)
}

// Get looks up a rule by name.
func (s *Set) Get(name string) (*Rule, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// ForTarget returns the rules that apply to t: the rules it names (all rules
// when it names none) whose files glob accepts its path. The set's own order
// is kept regardless of the order t lists them in.
func (s *Set) ForTarget(t Target) (*Set, error) {
	want := map[string]bool{}
	for _, name := range t.Rules {
		if _, ok := s.byName[name]; !ok {
			return nil, errors.Errorf("target %s: unknown rule %q", t.Path, name)
		}
		want[name] = true
	}

	var picked []*Rule
	for _, r := range s.rules {
		if len(want) > 0 && !want[r.Name()] {
			continue
		}
		if !r.AppliesTo(t.Path) {
			continue
		}
		picked = append(picked, r)
	}
	return NewSet(picked...)
}

// Apply runs every rule over text in order.
func (s *Set) Apply(text string, keys []string) (string, Counts) {
	counts := make(Counts, 0, len(s.rules))
	for _, r := range s.rules {
		var n int
		text, n = r.Apply(text, keys)
		counts = append(counts, Count{Rule: r.Name(), N: n})
	}
	return text, counts
}

// Converges applies the set twice. It returns the output of the first pass and
// the name of the first rule that still fired on the second pass, or "" when
// the first pass already reached a fixed point.
func (s *Set) Converges(text string, keys []string) (string, string) {
	once, _ := s.Apply(text, keys)
	_, counts := s.Apply(once, keys)
	for _, c := range counts {
		if c.N > 0 {
			return once, c.Rule
		}
	}
	return once, ""
}
