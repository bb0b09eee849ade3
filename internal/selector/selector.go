// Package selector implements the subset of CSS selector matching that
// directive selectors use: element name, attribute presence or value,
// classes, :not() negations, and comma-separated unions.
package selector

import "strings"

// Attr is an attribute requirement within a selector
type Attr struct {
	Name  string
	Value string
	// HasValue distinguishes [attr] from [attr=""]
	HasValue bool
}

// Selector is one parsed simple selector
type Selector struct {
	Element   string
	Classes   []string
	Attrs     []Attr
	Negations []*Selector
}

// Parse parses a directive selector string into its comma-separated
// alternatives. Malformed pieces are skipped rather than reported; a
// selector that parses to nothing matches nothing.
func Parse(src string) []*Selector {
	var out []*Selector
	for _, part := range splitTopLevel(src, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if sel := parseSimple(part); sel != nil {
			out = append(out, sel)
		}
	}
	return out
}

func parseSimple(src string) *Selector {
	sel := &Selector{}
	i := 0
	for i < len(src) {
		switch {
		case src[i] == '.':
			i++
			name, end := scanName(src, i)
			if name == "" {
				return nil
			}
			sel.Classes = append(sel.Classes, name)
			i = end
		case src[i] == '[':
			close := strings.IndexByte(src[i:], ']')
			if close < 0 {
				return nil
			}
			inner := src[i+1 : i+close]
			i += close + 1
			attr := Attr{Name: inner}
			if eq := strings.IndexByte(inner, '='); eq >= 0 {
				attr.Name = inner[:eq]
				attr.Value = strings.Trim(inner[eq+1:], `"'`)
				attr.HasValue = true
			}
			if attr.Name == "" {
				return nil
			}
			sel.Attrs = append(sel.Attrs, attr)
		case strings.HasPrefix(src[i:], ":not("):
			close := strings.IndexByte(src[i:], ')')
			if close < 0 {
				return nil
			}
			inner := src[i+len(":not(") : i+close]
			i += close + 1
			if neg := parseSimple(strings.TrimSpace(inner)); neg != nil {
				sel.Negations = append(sel.Negations, neg)
			}
		case isNameByte(src[i]):
			name, end := scanName(src, i)
			sel.Element = name
			i = end
		case src[i] == ' ' || src[i] == '\t':
			// descendant combinators are not supported in directive
			// selectors; stop at the first compound
			return sel
		default:
			return nil
		}
	}
	return sel
}

// Target is the template-side shape a selector is matched against
type Target struct {
	Element    string
	Attributes map[string]string
	Classes    map[string]bool
}

// NewTarget builds a match target from a tag name and attribute map,
// deriving classes from the class attribute
func NewTarget(element string, attributes map[string]string) Target {
	t := Target{Element: element, Attributes: attributes, Classes: map[string]bool{}}
	if attributes != nil {
		for _, c := range strings.Fields(attributes["class"]) {
			t.Classes[c] = true
		}
	}
	return t
}

// Matches reports whether the selector matches the target
func (s *Selector) Matches(t Target) bool {
	if s.Element != "" && !strings.EqualFold(s.Element, t.Element) {
		return false
	}
	for _, c := range s.Classes {
		if !t.Classes[c] {
			return false
		}
	}
	for _, a := range s.Attrs {
		v, ok := lookupAttr(t.Attributes, a.Name)
		if !ok {
			return false
		}
		if a.HasValue && v != a.Value {
			return false
		}
	}
	for _, n := range s.Negations {
		if n.Matches(t) {
			return false
		}
	}
	return true
}

// MatchesAny reports whether any alternative of a parsed selector list
// matches the target
func MatchesAny(selectors []*Selector, t Target) bool {
	for _, s := range selectors {
		if s.Matches(t) {
			return true
		}
	}
	return false
}

func lookupAttr(attrs map[string]string, name string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	if v, ok := attrs[name]; ok {
		return v, true
	}
	for k, v := range attrs {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// splitTopLevel splits on sep outside of any bracket nesting
func splitTopLevel(src string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, src[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, src[start:])
	return out
}

func scanName(src string, i int) (string, int) {
	start := i
	for i < len(src) && isNameByte(src[i]) {
		i++
	}
	return src[start:i], i
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
