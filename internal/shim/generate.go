package shim

import (
	"fmt"
	"strings"

	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/selector"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// ShimSuffix is appended to a component's source path to form its shim
// file URI
const ShimSuffix = ".ngtypecheck.js"

// generator emits one shim file for one component template
type generator struct {
	rec        *Record
	comp       *project.ComponentMeta
	candidates []*project.DirectiveMeta

	sb       strings.Builder
	tokens   []Token
	mappings []Mapping

	// names maps declared variables and references to their shim vars
	names map[template.Node]string
	seq   int
}

// generate parses nothing itself: it walks an already-built Record
// (component + template AST) and fills in the shim file, token index,
// mapping table, and per-node shim locations
func generate(rec *Record, candidates []*project.DirectiveMeta) {
	g := &generator{
		rec:        rec,
		comp:       rec.Component,
		candidates: candidates,
		names:      map[template.Node]string{},
	}
	rec.vars = map[*template.Variable]varLocs{}
	rec.locs = map[template.Node]int{}
	rec.matched = map[template.Node][]*project.DirectiveMeta{}
	rec.bindings = map[template.Node][]bindingTarget{}
	rec.entities = map[string]template.Node{}

	// pass 1: name every variable and reference, and build the scope
	rec.AST.Visit(func(n template.Node) {
		switch node := n.(type) {
		case *template.Variable:
			g.seq++
			g.names[node] = fmt.Sprintf("_t%d", g.seq)
			rec.entities[node.Name] = node
		case *template.Reference:
			g.seq++
			g.names[node] = fmt.Sprintf("_t%d", g.seq)
			rec.entities[node.Name] = node
		}
	})

	// pass 2: emit in document order
	fmt.Fprintf(&g.sb, "function _tcb_%s() {\n", g.comp.Name)
	for _, n := range rec.AST.Nodes {
		g.node(n)
	}
	g.sb.WriteString("}\n")

	locals := make(map[string]struct{}, len(g.names))
	for _, name := range g.names {
		locals[name] = struct{}{}
	}
	rec.File = &File{
		URI:      rec.Component.URI + "." + rec.Component.Name + ShimSuffix,
		Text:     g.sb.String(),
		Tokens:   g.tokens,
		Mappings: g.mappings,
		locals:   locals,
	}
}

// token writes an identifier to the shim, records it in the token
// index, and maps it back to the given template span. Returns the
// token's shim offset.
func (g *generator) token(name string, source template.SourceSpan, synthetic bool) int {
	start := g.sb.Len()
	g.sb.WriteString(name)
	span := template.NewSourceSpan(start, g.sb.Len())
	g.tokens = append(g.tokens, Token{Span: span, Synthetic: synthetic})
	if !synthetic {
		g.mappings = append(g.mappings, g.mapping(span, source))
	}
	return start
}

// mapping builds the mapping-table entry for a shim span: Direct into
// the owning source for inline templates, External into the template
// document otherwise, Indirect when the template text has no recovered
// provenance
func (g *generator) mapping(shimSpan, source template.SourceSpan) Mapping {
	switch {
	case g.comp.TemplateIndirect:
		return Mapping{ShimSpan: shimSpan, Kind: MappingIndirect}
	case g.comp.InlineTemplate:
		return Mapping{
			ShimSpan:   shimSpan,
			Kind:       MappingDirect,
			FileURI:    g.comp.URI,
			SourceSpan: source.Shift(g.comp.TemplateStart),
		}
	default:
		return Mapping{
			ShimSpan:   shimSpan,
			Kind:       MappingExternal,
			FileURI:    g.comp.TemplateURI,
			SourceSpan: source,
		}
	}
}

func (g *generator) node(n template.Node) {
	switch node := n.(type) {
	case *template.Element:
		g.elementLike(node, node.Attributes, node.Inputs, node.Outputs, node.References, nil, node.Children)
	case *template.Template:
		g.elementLike(node, node.Attributes, node.Inputs, node.Outputs, node.References, node.Variables, node.Children)
	case *template.BoundText:
		if len(node.Exprs) > 0 {
			g.sb.WriteString(`  "" + (`)
			g.exprs(node.Exprs)
			g.sb.WriteString(");\n")
		}
	}
}

func (g *generator) elementLike(host template.Node, attrs []*template.TextAttribute, inputs []*template.BoundAttribute, outputs []*template.BoundEvent, refs []*template.Reference, vars []*template.Variable, children []template.Node) {
	matched := g.match(host)
	g.rec.matched[host] = matched

	for _, v := range vars {
		g.variable(v)
	}
	for _, ref := range refs {
		g.reference(ref)
	}
	for _, attr := range attrs {
		g.bindingTargets(attr, attr.Name, attr.KeySpan, matched, false)
	}
	for _, in := range inputs {
		g.bindingTargets(in, in.Name, in.KeySpan, matched, false)
		if len(in.Value) > 0 {
			g.sb.WriteString(`  "" + (`)
			g.exprs(in.Value)
			g.sb.WriteString(");\n")
		}
	}
	for _, out := range outputs {
		g.bindingTargets(out, out.Name, out.KeySpan, matched, true)
		g.eventHandler(out)
	}
	for _, c := range children {
		g.node(c)
	}
}

// match computes the directive set bound to an element-like node
func (g *generator) match(host template.Node) []*project.DirectiveMeta {
	target := TargetFor(host)
	var matched []*project.DirectiveMeta
	for _, d := range g.candidates {
		if d.Selector == "" {
			continue
		}
		if selector.MatchesAny(selector.Parse(d.Selector), target) {
			matched = append(matched, d)
		}
	}
	return matched
}

// bindingTargets emits one member access per matched directive that
// declares the binding, and records the targets on the attribute node
func (g *generator) bindingTargets(attrNode template.Node, name string, keySpan template.SourceSpan, matched []*project.DirectiveMeta, output bool) {
	for _, d := range matched {
		var binding project.PropertyBinding
		var ok bool
		if output {
			binding, ok = d.Output(name)
		} else {
			binding, ok = d.Input(name)
		}
		if !ok {
			continue
		}
		g.sb.WriteString("  ({}).")
		off := g.token(binding.ClassProperty, keySpan, false)
		g.sb.WriteString(";\n")
		g.rec.bindings[attrNode] = append(g.rec.bindings[attrNode], bindingTarget{directive: d, offset: off})
	}
}

func (g *generator) variable(v *template.Variable) {
	g.sb.WriteString("  var ")
	local := g.token(g.names[v], v.KeySpan, false)
	g.sb.WriteString(" = (_ctx.")
	init := g.token(v.Value, v.ValueSpan, false)
	g.sb.WriteString(");\n")
	g.rec.vars[v] = varLocs{local: local, init: init}
}

func (g *generator) reference(ref *template.Reference) {
	g.sb.WriteString("  var ")
	off := g.token(g.names[ref], ref.KeySpan, false)
	g.sb.WriteString(" = null;\n")
	g.rec.locs[ref] = off
}

func (g *generator) eventHandler(out *template.BoundEvent) {
	g.sb.WriteString("  (function (")
	g.token("$event", template.SourceSpan{}, true)
	g.sb.WriteString(") { ")
	if len(out.Handler) > 0 {
		g.sb.WriteString(`"" + (`)
		g.exprs(out.Handler)
		g.sb.WriteString(");")
	}
	g.sb.WriteString(" });\n")
}

// exprs emits the named tokens of a binding expression as a
// comma-separated list, rebuilding member chains so the shim stays
// plausible JavaScript
func (g *generator) exprs(exprs []*template.Expr) {
	firstItem := true
	item := func() {
		if !firstItem {
			g.sb.WriteString(", ")
		}
		firstItem = false
	}
	for _, e := range exprs {
		switch e.Kind {
		case template.ExprPropertyRead:
			item()
			if decl, ok := g.rec.entities[e.Name]; ok {
				off := g.token(g.names[decl], e.NameSpan, false)
				g.rec.locs[e] = off
			} else if e.Name == "$event" {
				off := g.token("$event", e.NameSpan, false)
				g.rec.locs[e] = off
			} else {
				g.sb.WriteString("this.")
				off := g.token(e.Name, e.NameSpan, false)
				g.rec.locs[e] = off
			}
		case template.ExprPathRead:
			// continues the previous chain item
			g.sb.WriteString(".")
			off := g.token(e.Name, e.NameSpan, false)
			g.rec.locs[e] = off
		case template.ExprPipe:
			item()
			off := g.token(e.Name, e.NameSpan, false)
			g.rec.locs[e] = off
		}
	}
	if firstItem {
		g.sb.WriteString("0")
	}
}
