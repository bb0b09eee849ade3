package template

// ExprKind classifies a token produced by the binding-expression scanner
type ExprKind int

const (
	// ExprPropertyRead is an identifier read against the implicit
	// receiver (the component, or a template variable in scope)
	ExprPropertyRead ExprKind = iota
	// ExprPathRead is an identifier read off another value (x.y)
	ExprPathRead
	// ExprPipe is a pipe name following the | operator
	ExprPipe
)

// Expr is a single named token inside a binding expression or
// interpolation. Spans are absolute in the template text.
type Expr struct {
	Kind     ExprKind
	Name     string
	NameSpan SourceSpan
}

func (e *Expr) Span() SourceSpan { return e.NameSpan }

// keyword set skipped by the scanner; these are never property reads
var exprKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "undefined": true,
	"this": true, "typeof": true, "in": true, "as": true, "let": true,
	"of": true,
}

// ParseBinding scans an Angular binding expression and returns its
// named tokens (property reads, path reads, pipe names) with absolute
// spans. base is the offset of src within the template text.
//
// The scanner is deliberately shallow: it skips string literals and
// numbers, classifies identifiers by their immediate context, and
// ignores operators. That is all reference resolution needs; full
// expression semantics live in the shim.
func ParseBinding(src string, base int) []*Expr {
	var out []*Expr
	i := 0
	afterDot := false
	afterPipe := false
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(src, i)
			afterDot, afterPipe = false, false
		case c == '.':
			afterDot = true
			i++
		case c == '|':
			// || is logical or, a single | is a pipe
			if i+1 < len(src) && src[i+1] == '|' {
				i += 2
				afterPipe = false
			} else {
				afterPipe = true
				i++
			}
			afterDot = false
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			name := src[start:i]
			switch {
			case afterPipe:
				out = append(out, &Expr{Kind: ExprPipe, Name: name, NameSpan: NewSourceSpan(base+start, base+i)})
			case afterDot:
				out = append(out, &Expr{Kind: ExprPathRead, Name: name, NameSpan: NewSourceSpan(base+start, base+i)})
			case !exprKeywords[name]:
				out = append(out, &Expr{Kind: ExprPropertyRead, Name: name, NameSpan: NewSourceSpan(base+start, base+i)})
			}
			afterDot, afterPipe = false, false
		case c >= '0' && c <= '9':
			for i < len(src) && (isIdentPart(src[i]) || src[i] == '.') {
				i++
			}
			afterDot, afterPipe = false, false
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			i++
			afterDot, afterPipe = false, false
		}
	}
	return out
}

func skipString(src string, i int) int {
	quote := src[i]
	i++
	for i < len(src) {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1
		}
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
