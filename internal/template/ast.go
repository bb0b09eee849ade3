package template

import "fmt"

// SourceSpan is a half-open [Start, End) byte range in a template's text.
type SourceSpan struct {
	Start int
	End   int
}

// NewSourceSpan creates a span from start and end byte offsets
func NewSourceSpan(start, end int) SourceSpan {
	return SourceSpan{Start: start, End: end}
}

// Contains reports whether the offset falls inside the span
func (s SourceSpan) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Length returns the span length in bytes
func (s SourceSpan) Length() int {
	return s.End - s.Start
}

// Shift returns the span moved by the given delta
func (s SourceSpan) Shift(delta int) SourceSpan {
	return SourceSpan{Start: s.Start + delta, End: s.End + delta}
}

// Empty reports whether the span covers no text
func (s SourceSpan) Empty() bool {
	return s.End <= s.Start
}

func (s SourceSpan) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Node is implemented by every template AST node, including expression
// nodes embedded in binding values and interpolations.
type Node interface {
	// Span returns the node's full span in template text
	Span() SourceSpan
}

// Element is a plain markup element with its bindings and children
type Element struct {
	Name       string
	NameSpan   SourceSpan
	FullSpan   SourceSpan
	Attributes []*TextAttribute
	Inputs     []*BoundAttribute
	Outputs    []*BoundEvent
	References []*Reference
	Children   []Node
}

func (e *Element) Span() SourceSpan { return e.FullSpan }

// Template is an <ng-template> or the synthetic host created for a
// structural (*directive) attribute
type Template struct {
	// Tag is the tag the template was written on ("ng-template" or the
	// host element's tag for structural directives)
	Tag        string
	TagSpan    SourceSpan
	FullSpan   SourceSpan
	Attributes []*TextAttribute
	Inputs     []*BoundAttribute
	Outputs    []*BoundEvent
	Variables  []*Variable
	References []*Reference
	Children   []Node
}

func (t *Template) Span() SourceSpan { return t.FullSpan }

// TextAttribute is a static attribute, name="value"
type TextAttribute struct {
	Name      string
	Value     string
	KeySpan   SourceSpan
	ValueSpan SourceSpan
	FullSpan  SourceSpan
}

func (a *TextAttribute) Span() SourceSpan { return a.FullSpan }

// BoundAttribute is a property binding, [name]="expr" (or the property
// half of a two-way [(name)] binding)
type BoundAttribute struct {
	Name      string
	KeySpan   SourceSpan
	ValueSpan SourceSpan
	FullSpan  SourceSpan
	Value     []*Expr
	// TwoWay marks the property half of a [(name)] binding
	TwoWay bool
}

func (a *BoundAttribute) Span() SourceSpan { return a.FullSpan }

// BoundEvent is an event binding, (name)="handler" (or the event half
// of a two-way binding, in which case Name carries the Change suffix)
type BoundEvent struct {
	Name        string
	KeySpan     SourceSpan
	HandlerSpan SourceSpan
	FullSpan    SourceSpan
	Handler     []*Expr
	// FromTwoWay marks the synthetic event half of a [(name)] binding
	FromTwoWay bool
}

func (e *BoundEvent) Span() SourceSpan { return e.FullSpan }

// Reference is a local template reference, #name or #name="exportAs"
type Reference struct {
	Name      string
	Value     string
	KeySpan   SourceSpan
	ValueSpan SourceSpan
	FullSpan  SourceSpan
}

func (r *Reference) Span() SourceSpan { return r.FullSpan }

// Variable is a template input variable declaration: let-name="ctxKey"
// on an ng-template, or a let binding in structural microsyntax
type Variable struct {
	Name      string
	Value     string
	KeySpan   SourceSpan
	ValueSpan SourceSpan
	FullSpan  SourceSpan
}

func (v *Variable) Span() SourceSpan { return v.FullSpan }

// BoundText is a text node containing one or more {{ }} interpolations
type BoundText struct {
	FullSpan SourceSpan
	Exprs    []*Expr
}

func (b *BoundText) Span() SourceSpan { return b.FullSpan }

// Text is a plain text node with no interpolation
type Text struct {
	Value    string
	FullSpan SourceSpan
}

func (t *Text) Span() SourceSpan { return t.FullSpan }

// AST is a parsed template together with its source text
type AST struct {
	Source string
	Nodes  []Node

	// parents maps attributes, bindings, references and variables to
	// the Element or Template that owns them
	parents map[Node]Node
}

// Parent returns the Element or Template owning an attribute-like node,
// or nil for top-level nodes
func (a *AST) Parent(n Node) Node {
	return a.parents[n]
}

// Visit walks every node in document order, attribute-like nodes and
// expression nodes included, calling fn for each
func (a *AST) Visit(fn func(Node)) {
	for _, n := range a.Nodes {
		visitNode(n, fn)
	}
}

func visitNode(n Node, fn func(Node)) {
	fn(n)
	switch node := n.(type) {
	case *Element:
		visitElementParts(node.Attributes, node.Inputs, node.Outputs, node.References, nil, fn)
		for _, c := range node.Children {
			visitNode(c, fn)
		}
	case *Template:
		visitElementParts(node.Attributes, node.Inputs, node.Outputs, node.References, node.Variables, fn)
		for _, c := range node.Children {
			visitNode(c, fn)
		}
	case *BoundText:
		for _, e := range node.Exprs {
			fn(e)
		}
	case *BoundAttribute:
		for _, e := range node.Value {
			fn(e)
		}
	case *BoundEvent:
		for _, e := range node.Handler {
			fn(e)
		}
	}
}

func visitElementParts(attrs []*TextAttribute, inputs []*BoundAttribute, outputs []*BoundEvent, refs []*Reference, vars []*Variable, fn func(Node)) {
	for _, a := range attrs {
		fn(a)
	}
	for _, in := range inputs {
		visitNode(in, fn)
	}
	for _, out := range outputs {
		visitNode(out, fn)
	}
	for _, r := range refs {
		fn(r)
	}
	for _, v := range vars {
		fn(v)
	}
}
