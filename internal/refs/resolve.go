package refs

import (
	"strings"

	"github.com/pwwpche/angular-template-lsp/internal/selector"
	"github.com/pwwpche/angular-template-lsp/internal/shim"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// resolveSymbol dispatches on symbol kind. Every kind is handled
// explicitly; kinds that denote no searchable entity return nil.
func (b *Builder) resolveSymbol(sym *shim.Symbol, node template.Node, offset int) []Entry {
	switch sym.Kind {
	case shim.SymbolDirective, shim.SymbolTemplate:
		// the synthetic container itself is not a referenceable entity
		return nil

	case shim.SymbolElement:
		return b.resolveElement(sym)

	case shim.SymbolDomBinding:
		return b.resolveDomBinding(sym, node)

	case shim.SymbolReference, shim.SymbolPipe, shim.SymbolExpression:
		return b.search(sym.Location.URI, sym.Location.Offset)

	case shim.SymbolVariable:
		return b.resolveVariable(sym, node, offset)

	case shim.SymbolInput, shim.SymbolOutput:
		if len(sym.Bindings) == 0 {
			return nil
		}
		loc := sym.Bindings[0].Location
		return b.search(loc.URI, loc.Offset)
	}
	return nil
}

// resolveElement resolves the element to the directives whose
// selectors match its tag alone, unioned in match order. Directives
// matched through attributes on the same host resolve via those
// attribute bindings instead.
func (b *Builder) resolveElement(sym *shim.Symbol) []Entry {
	matched := b.checker.MatchDirectives(shim.TagTarget(sym.Host), sym.Directives)
	var out []Entry
	for _, dir := range matched {
		out = append(out, b.search(dir.URI, dir.NameSpan.Start)...)
	}
	return out
}

// resolveDomBinding handles attributes that bind no directive input:
// references resolve only when a directive on the host claims the
// attribute name in its selector, in which case they resolve to that
// directive's class
func (b *Builder) resolveDomBinding(sym *shim.Symbol, node template.Node) []Entry {
	name := attributeName(node)
	if name == "" {
		return nil
	}
	target := shim.AttributeTarget(sym.Host, name)
	matched := b.checker.MatchDirectives(target, sym.Directives)
	var out []Entry
	for _, dir := range matched {
		if !selectorMentions(dir.Selector, name) {
			continue
		}
		out = append(out, b.search(dir.URI, dir.NameSpan.Start)...)
	}
	return out
}

// selectorMentions reports whether any simple selector in set requires
// the attribute. A tag-only selector can match the narrowed attribute
// target without claiming the attribute, so matching alone is not
// enough.
func selectorMentions(set string, attrName string) bool {
	for _, sel := range selector.Parse(set) {
		for _, a := range sel.Attrs {
			if strings.EqualFold(a.Name, attrName) {
				return true
			}
		}
	}
	return false
}

// resolveVariable picks the declaration-side location by where the
// cursor sits: value span resolves the initializer expression, key
// span (and usages elsewhere in the template) resolve the local
// variable slot
func (b *Builder) resolveVariable(sym *shim.Symbol, node template.Node, offset int) []Entry {
	decl, isDecl := node.(*template.Variable)
	switch {
	case isDecl && decl.ValueSpan.Contains(offset) && !decl.ValueSpan.Empty():
		return b.search(sym.Initializer.URI, sym.Initializer.Offset)
	default:
		return b.search(sym.LocalVar.URI, sym.LocalVar.Offset)
	}
}

func attributeName(node template.Node) string {
	switch n := node.(type) {
	case *template.TextAttribute:
		return n.Name
	case *template.BoundAttribute:
		return n.Name
	}
	return ""
}
