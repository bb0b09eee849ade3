package shim

import (
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/selector"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// SymbolKind enumerates the closed set of template symbol
// classifications
type SymbolKind int

const (
	SymbolDirective SymbolKind = iota
	SymbolTemplate
	SymbolElement
	SymbolDomBinding
	SymbolReference
	SymbolVariable
	SymbolInput
	SymbolOutput
	SymbolPipe
	SymbolExpression
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolDirective:
		return "directive"
	case SymbolTemplate:
		return "template"
	case SymbolElement:
		return "element"
	case SymbolDomBinding:
		return "dom-binding"
	case SymbolReference:
		return "reference"
	case SymbolVariable:
		return "variable"
	case SymbolInput:
		return "input"
	case SymbolOutput:
		return "output"
	case SymbolPipe:
		return "pipe"
	case SymbolExpression:
		return "expression"
	}
	return "unknown"
}

// Symbol is the tagged classification of a template node; the payload
// fields used depend on Kind
type Symbol struct {
	Kind SymbolKind

	// Host and Directives: Element and DomBinding
	Host       template.Node
	Directives []*project.DirectiveMeta

	// Location: Reference, Pipe, Expression
	Location Location

	// Variable payload
	Declaration *template.Variable
	LocalVar    Location
	Initializer Location

	// Input and Output payload: ordered binding targets
	Bindings []BindingTarget
}

// TargetFor builds the selector match target of an element-like node:
// its tag plus every attribute and binding name present on it
func TargetFor(host template.Node) selector.Target {
	attrMap := map[string]string{}
	var tag string
	switch h := host.(type) {
	case *template.Element:
		tag = h.Name
		for _, a := range h.Attributes {
			attrMap[a.Name] = a.Value
		}
		for _, in := range h.Inputs {
			attrMap[in.Name] = ""
		}
		for _, out := range h.Outputs {
			attrMap[out.Name] = ""
		}
	case *template.Template:
		tag = h.Tag
		for _, a := range h.Attributes {
			attrMap[a.Name] = a.Value
		}
		for _, in := range h.Inputs {
			attrMap[in.Name] = ""
		}
		for _, out := range h.Outputs {
			attrMap[out.Name] = ""
		}
	}
	return selector.NewTarget(tag, attrMap)
}

// TagTarget builds the selector match target carrying only the host's
// tag. Resolving the element itself considers tag selectors alone;
// attribute-selected directives belong to their bindings.
func TagTarget(host template.Node) selector.Target {
	return selector.NewTarget(hostTag(host), nil)
}

// AttributeTarget builds the selector match target for a single
// attribute name on a host tag, used for DOM binding resolution
func AttributeTarget(host template.Node, attrName string) selector.Target {
	return selector.NewTarget(hostTag(host), map[string]string{attrName: ""})
}

func hostTag(host template.Node) string {
	switch h := host.(type) {
	case *template.Element:
		return h.Name
	case *template.Template:
		return h.Tag
	}
	return ""
}

// ClassifySymbol classifies a located template node within its
// component's shim record. A nil result means the node has no
// resolvable classification (whitespace, plain text, unsupported
// syntax) and is skipped by callers.
func (c *Checker) ClassifySymbol(node template.Node, rec *Record) *Symbol {
	switch n := node.(type) {
	case *template.Element:
		return &Symbol{Kind: SymbolElement, Host: n, Directives: rec.MatchedDirectives(n)}
	case *template.Template:
		return &Symbol{Kind: SymbolTemplate}
	case *template.Variable:
		local, init, ok := rec.VarLocations(n)
		if !ok {
			return nil
		}
		return &Symbol{Kind: SymbolVariable, Declaration: n, LocalVar: local, Initializer: init}
	case *template.Reference:
		loc, ok := rec.NodeLocation(n)
		if !ok {
			return nil
		}
		return &Symbol{Kind: SymbolReference, Location: loc}
	case *template.TextAttribute:
		return c.classifyAttribute(n, rec)
	case *template.BoundAttribute:
		return c.classifyAttribute(n, rec)
	case *template.BoundEvent:
		if bindings := rec.Bindings(n); len(bindings) > 0 {
			return &Symbol{Kind: SymbolOutput, Bindings: bindings}
		}
		// event bindings without a directive output have no
		// references target of their own
		return nil
	case *template.Expr:
		return c.classifyExpr(n, rec)
	}
	return nil
}

// classifyAttribute distinguishes directive input bindings from plain
// DOM bindings on the host element
func (c *Checker) classifyAttribute(attr template.Node, rec *Record) *Symbol {
	if bindings := rec.Bindings(attr); len(bindings) > 0 {
		return &Symbol{Kind: SymbolInput, Bindings: bindings}
	}
	host := rec.AST.Parent(attr)
	if host == nil {
		return nil
	}
	return &Symbol{Kind: SymbolDomBinding, Host: host, Directives: rec.MatchedDirectives(host)}
}

// classifyExpr resolves an expression token: in-scope variable or
// reference usages first, then pipes, then plain expression reads
func (c *Checker) classifyExpr(e *template.Expr, rec *Record) *Symbol {
	if e.Kind == template.ExprPipe {
		loc, ok := rec.NodeLocation(e)
		if !ok {
			return nil
		}
		return &Symbol{Kind: SymbolPipe, Location: loc}
	}
	if e.Kind == template.ExprPropertyRead {
		if decl, ok := rec.Entity(e.Name); ok {
			switch d := decl.(type) {
			case *template.Variable:
				local, init, found := rec.VarLocations(d)
				if !found {
					return nil
				}
				return &Symbol{Kind: SymbolVariable, Declaration: d, LocalVar: local, Initializer: init}
			case *template.Reference:
				loc, found := rec.NodeLocation(d)
				if !found {
					return nil
				}
				return &Symbol{Kind: SymbolReference, Location: loc}
			}
		}
	}
	loc, ok := rec.NodeLocation(e)
	if !ok {
		return nil
	}
	return &Symbol{Kind: SymbolExpression, Location: loc}
}
