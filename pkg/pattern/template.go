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

package pattern

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Template renders replacement text from the captures of a Match.
type Template struct {
	src   string
	segs  []segment
	names []string
}

// ParseTemplate parses src. Template references use the same {{name}} syntax
// as patterns; a kind suffix is not allowed.
func ParseTemplate(src string) (*Template, error) {
	segs, err := parse(src, false)
	if err != nil {
		return nil, errors.Errorf("parsing template %q: %w", src, err)
	}
	t := &Template{src: src, segs: segs}
	seen := map[string]bool{}
	for _, s := range segs {
		if s.isCapture() && !seen[s.capture] {
			seen[s.capture] = true
			t.names = append(t.names, s.capture)
		}
	}
	return t, nil
}

// String returns the source text of the template.
func (t *Template) String() string {
	return t.src
}

// Names returns the referenced capture names in order of first appearance.
func (t *Template) Names() []string {
	return append([]string(nil), t.names...)
}

// Render substitutes captures into the template. Missing captures render as
// the empty string; Check catches those before any text is rendered.
func (t *Template) Render(captures map[string]string) string {
	var b strings.Builder
	for _, s := range t.segs {
		if s.isCapture() {
			b.WriteString(captures[s.capture])
			continue
		}
		b.WriteString(s.literal)
	}
	return b.String()
}

// Check reports an error if the template references a capture p does not define.
func (t *Template) Check(p *Pattern) error {
	for _, name := range t.names {
		if !p.HasCapture(name) {
			return errors.Errorf("template %q references {{%s}} which pattern %q does not capture", t.src, name, p.src)
		}
	}
	return nil
}

// parse splits src into literal and capture segments. Adjacent literal text
// is merged into a single segment.
func parse(src string, allowKind bool) ([]segment, error) {
	var segs []segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); {
		if !strings.HasPrefix(src[i:], "{{") {
			lit.WriteByte(src[i])
			i++
			continue
		}

		end := strings.Index(src[i+2:], "}}")
		if end < 0 {
			return nil, errors.Errorf("unterminated {{ at offset %d", i)
		}
		body := strings.TrimSpace(src[i+2 : i+2+end])

		name, kindName, hasKind := strings.Cut(body, ":")
		if hasKind && !allowKind {
			return nil, errors.Errorf("capture kind not allowed in {{%s}}", body)
		}
		if !isIdent(name) {
			return nil, errors.Errorf("invalid capture name %q at offset %d", name, i)
		}
		kind, err := parseKind(kindName)
		if err != nil {
			return nil, err
		}

		flush()
		segs = append(segs, segment{capture: name, kind: kind})
		i += 2 + end + 2
	}
	flush()

	return segs, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Replace rewrites every match of p in text accepted by accept with t rendered
// from the match captures. It returns the new text and the number of matches
// replaced. Text outside the matches is copied unchanged.
func Replace(text string, p *Pattern, t *Template, accept func(Match) bool) (string, int) {
	matches := p.FindAllFunc(text, accept)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m.Start])
		b.WriteString(t.Render(m.Captures))
		last = m.End
	}
	b.WriteString(text[last:])
	return b.String(), len(matches)
}
