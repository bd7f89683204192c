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

// Package pattern implements the structured text patterns used by rewrite rules.
//
// A pattern is literal text with named captures written as {{name}} or
// {{name:kind}}:
//
//	JSON.parse(localStorage.getItem('{{key}}') || '{{fallback}}')
//
// An expr capture (the default kind) matches a non-empty run of text whose
// (), [] and {} delimiters are balanced and whose quoted strings are closed, so
// a capture never stops inside a nested call such as fn(a, b). A word capture
// matches [A-Za-z0-9_$.-]+. A space capture matches a possibly empty run of
// whitespace, so a replacement can keep the layout between two statements. A
// name used twice must capture the same text both times.
//
// Patterns must start and end with literal text. Matching is purely textual:
// comments and regular expression literals are not understood.
package pattern

import (
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// Kind selects what a capture may match.
type Kind int

const (
	KindExpr Kind = iota
	KindWord
	KindSpace
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindSpace:
		return "space"
	default:
		return "expr"
	}
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "", "expr":
		return KindExpr, nil
	case "word":
		return KindWord, nil
	case "space":
		return KindSpace, nil
	default:
		return KindExpr, errors.Errorf("unknown capture kind %q", s)
	}
}

// segment is either a literal or a capture.
type segment struct {
	literal string
	capture string
	kind    Kind
}

func (s segment) isCapture() bool {
	return s.capture != ""
}

// Option configures Compile.
type Option func(*Pattern)

// Loose makes every whitespace run in a literal match zero or more
// whitespace characters in the text.
func Loose() Option {
	return func(p *Pattern) {
		p.loose = true
	}
}

// Pattern is a compiled pattern. It is safe for concurrent use.
type Pattern struct {
	src   string
	segs  []segment
	names []string
	loose bool
}

// Match is a single occurrence of a pattern in a text.
type Match struct {
	Start    int
	End      int
	Text     string
	Captures map[string]string
}

// Compile parses src into a Pattern.
func Compile(src string, opts ...Option) (*Pattern, error) {
	p := &Pattern{src: src}
	for _, opt := range opts {
		opt(p)
	}

	segs, err := parse(src, true)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", src, err)
	}

	if len(segs) == 0 {
		return nil, errors.Errorf("compiling pattern %q: pattern is empty", src)
	}

	if p.loose {
		// leading and trailing whitespace would match the empty string anyway
		segs[0].literal = strings.TrimLeftFunc(segs[0].literal, unicode.IsSpace)
		last := len(segs) - 1
		segs[last].literal = strings.TrimRightFunc(segs[last].literal, unicode.IsSpace)
	}

	if segs[0].isCapture() || segs[0].literal == "" {
		return nil, errors.Errorf("compiling pattern %q: pattern must start with literal text", src)
	}
	if segs[len(segs)-1].isCapture() || segs[len(segs)-1].literal == "" {
		return nil, errors.Errorf("compiling pattern %q: pattern must end with literal text", src)
	}

	seen := map[string]bool{}
	for i, s := range segs {
		if !s.isCapture() {
			continue
		}
		if i > 0 && segs[i-1].isCapture() {
			return nil, errors.Errorf("compiling pattern %q: captures {{%s}} and {{%s}} are adjacent", src, segs[i-1].capture, s.capture)
		}
		if !seen[s.capture] {
			seen[s.capture] = true
			p.names = append(p.names, s.capture)
		}
	}

	p.segs = segs
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string, opts ...Option) *Pattern {
	p, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source text of the pattern.
func (p *Pattern) String() string {
	return p.src
}

// Names returns the capture names in order of first appearance.
func (p *Pattern) Names() []string {
	return append([]string(nil), p.names...)
}

// HasCapture reports whether the pattern defines the named capture.
func (p *Pattern) HasCapture(name string) bool {
	for _, n := range p.names {
		if n == name {
			return true
		}
	}
	return false
}

// IsLiteral reports whether the pattern has no captures.
func (p *Pattern) IsLiteral() bool {
	return len(p.names) == 0
}

// FindAll returns all non-overlapping matches in text, leftmost first.
func (p *Pattern) FindAll(text string) []Match {
	return p.FindAllFunc(text, nil)
}

// FindAllFunc is like FindAll but only keeps matches accepted by accept. A
// rejected candidate makes the matcher try other capture lengths at the same
// start before moving on, so accept acts as part of the pattern.
func (p *Pattern) FindAllFunc(text string, accept func(Match) bool) []Match {
	var out []Match
	pos := 0
	for pos < len(text) {
		start := p.nextCandidate(text, pos)
		if start < 0 {
			break
		}
		m, ok := p.matchAt(text, start, accept)
		if ok {
			out = append(out, m)
			pos = m.End
			continue
		}
		pos = start + 1
	}
	return out
}

// Count returns the number of matches FindAll would return.
func (p *Pattern) Count(text string) int {
	return len(p.FindAll(text))
}

// anchor is the prefix of the first literal that every match starts with.
func (p *Pattern) anchor() string {
	lit := p.segs[0].literal
	if !p.loose {
		return lit
	}
	if i := strings.IndexFunc(lit, unicode.IsSpace); i >= 0 {
		return lit[:i]
	}
	return lit
}

func (p *Pattern) nextCandidate(text string, pos int) int {
	i := strings.Index(text[pos:], p.anchor())
	if i < 0 {
		return -1
	}
	return pos + i
}

func (p *Pattern) matchAt(text string, start int, accept func(Match) bool) (Match, bool) {
	caps := map[string]string{}
	var found Match
	ok := p.matchFrom(text, start, 0, caps, func(end int) bool {
		m := Match{
			Start:    start,
			End:      end,
			Text:     text[start:end],
			Captures: make(map[string]string, len(caps)),
		}
		for k, v := range caps {
			m.Captures[k] = v
		}
		if accept != nil && !accept(m) {
			return false
		}
		found = m
		return true
	})
	return found, ok
}

// matchFrom matches segs[i:] at pos. done is called with the end offset once
// every segment matched; returning false from done backtracks.
func (p *Pattern) matchFrom(text string, pos, i int, caps map[string]string, done func(end int) bool) bool {
	if i == len(p.segs) {
		return done(pos)
	}

	seg := p.segs[i]
	if !seg.isCapture() {
		end, ok := p.matchLiteral(text, pos, seg.literal)
		if !ok {
			return false
		}
		return p.matchFrom(text, end, i+1, caps, done)
	}

	if prev, bound := caps[seg.capture]; bound {
		if !strings.HasPrefix(text[pos:], prev) {
			return false
		}
		return p.matchFrom(text, pos+len(prev), i+1, caps, done)
	}

	try := func(end int) bool {
		caps[seg.capture] = text[pos:end]
		if p.matchFrom(text, end, i+1, caps, done) {
			return true
		}
		delete(caps, seg.capture)
		return false
	}

	switch seg.kind {
	case KindWord:
		return scanWord(text, pos, try)
	case KindSpace:
		return scanSpace(text, pos, try)
	default:
		return scanExpr(text, pos, try)
	}
}

func (p *Pattern) matchLiteral(text string, pos int, lit string) (int, bool) {
	if !p.loose {
		if strings.HasPrefix(text[pos:], lit) {
			return pos + len(lit), true
		}
		return 0, false
	}

	j := pos
	for k := 0; k < len(lit); {
		if isSpace(lit[k]) {
			for k < len(lit) && isSpace(lit[k]) {
				k++
			}
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			continue
		}
		if j >= len(text) || text[j] != lit[k] {
			return 0, false
		}
		j++
		k++
	}
	return j, true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' || c == '-' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// scanWord offers every word-only end offset after pos to try, shortest first.
func scanWord(text string, pos int, try func(end int) bool) bool {
	for j := pos; j < len(text) && isWordByte(text[j]); j++ {
		if try(j + 1) {
			return true
		}
	}
	return false
}

// scanSpace offers every whitespace-only end offset from pos on, starting with
// the empty capture.
func scanSpace(text string, pos int, try func(end int) bool) bool {
	for j := pos; ; j++ {
		if try(j) {
			return true
		}
		if j >= len(text) || !isSpace(text[j]) {
			return false
		}
	}
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// scanExpr offers every end offset after pos at which the text in between is
// balanced, shortest first. It gives up at a closing delimiter that was opened
// before pos, or when a delimiter is closed by the wrong kind.
func scanExpr(text string, pos int, try func(end int) bool) bool {
	var stack []byte
	var quote byte
	for j := pos; j < len(text); {
		c := text[j]

		if quote != 0 {
			switch c {
			case '\\':
				j += 2
				continue
			case quote:
				quote = 0
			}
			j++
			if quote == 0 && len(stack) == 0 && try(j) {
				return true
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
			j++
			continue
		case '(', '[', '{':
			stack = append(stack, closers[c])
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return false
			}
			stack = stack[:len(stack)-1]
		}
		j++

		if len(stack) == 0 && try(j) {
			return true
		}
	}
	return false
}
