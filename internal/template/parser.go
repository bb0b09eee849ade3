package template

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}
		return parser
	},
}

// ClosePool closes all parsers currently pooled
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*sitter.Parser); ok && p != nil {
			p.Close()
		}
	}
}

// Parse parses Angular template markup into an AST. The HTML structure
// comes from tree-sitter; binding syntax ([x], (y), [(z)], #ref, let-,
// *structural, {{ }}) is recognized on top of it.
func Parse(source string) (*AST, error) {
	parser := parserPool.Get().(*sitter.Parser)
	parser.Reset()
	defer parserPool.Put(parser)

	sourceBytes := []byte(source)
	tree := parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil, fmt.Errorf("template parse produced no tree")
	}
	defer tree.Close()

	b := &astBuilder{source: source, parents: map[Node]Node{}}
	nodes := b.children(tree.RootNode())
	return &AST{Source: source, Nodes: nodes, parents: b.parents}, nil
}

type astBuilder struct {
	source  string
	parents map[Node]Node
}

func (b *astBuilder) text(n *sitter.Node) string {
	return b.source[n.StartByte():n.EndByte()]
}

func (b *astBuilder) span(n *sitter.Node) SourceSpan {
	return NewSourceSpan(int(n.StartByte()), int(n.EndByte()))
}

func (b *astBuilder) children(n *sitter.Node) []Node {
	var out []Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "element":
			if node := b.element(child); node != nil {
				out = append(out, node)
			}
		case "text":
			out = append(out, b.textNode(child))
		}
	}
	return out
}

// textNode turns a text region into a BoundText when it interpolates,
// a plain Text otherwise
func (b *astBuilder) textNode(n *sitter.Node) Node {
	value := b.text(n)
	base := int(n.StartByte())
	var exprs []*Expr
	rest := value
	off := 0
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open:], "}}")
		if close < 0 {
			break
		}
		inner := rest[open+2 : open+close]
		exprs = append(exprs, ParseBinding(inner, base+off+open+2)...)
		advance := open + close + 2
		rest = rest[advance:]
		off += advance
	}
	if len(exprs) == 0 {
		return &Text{Value: value, FullSpan: b.span(n)}
	}
	return &BoundText{FullSpan: b.span(n), Exprs: exprs}
}

// rawAttr is an attribute before binding-syntax classification
type rawAttr struct {
	name      string
	value     string
	keySpan   SourceSpan
	valueSpan SourceSpan
	fullSpan  SourceSpan
	hasValue  bool
}

func (b *astBuilder) element(n *sitter.Node) Node {
	var tagNode *sitter.Node
	var attrs []rawAttr
	var childNodes []Node

	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "start_tag", "self_closing_tag":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				part := child.NamedChild(j)
				switch part.Kind() {
				case "tag_name":
					tagNode = part
				case "attribute":
					attrs = append(attrs, b.attribute(part))
				}
			}
		case "element":
			if node := b.element(child); node != nil {
				childNodes = append(childNodes, node)
			}
		case "text":
			childNodes = append(childNodes, b.textNode(child))
		}
	}

	if tagNode == nil {
		return nil
	}
	tag := b.text(tagNode)
	if tag == "ng-template" {
		return b.ngTemplate(n, tagNode, attrs, childNodes)
	}
	return b.plainElement(n, tagNode, attrs, childNodes)
}

func (b *astBuilder) attribute(n *sitter.Node) rawAttr {
	a := rawAttr{fullSpan: b.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		part := n.NamedChild(i)
		switch part.Kind() {
		case "attribute_name":
			a.name = b.text(part)
			a.keySpan = b.span(part)
		case "attribute_value":
			a.value = b.text(part)
			a.valueSpan = b.span(part)
			a.hasValue = true
		case "quoted_attribute_value":
			for j := uint(0); j < part.NamedChildCount(); j++ {
				inner := part.NamedChild(j)
				if inner.Kind() == "attribute_value" {
					a.value = b.text(inner)
					a.valueSpan = b.span(inner)
					a.hasValue = true
				}
			}
			if !a.hasValue {
				// empty quoted value, span collapses inside the quotes
				start := int(part.StartByte()) + 1
				a.valueSpan = NewSourceSpan(start, start)
				a.hasValue = true
			}
		}
	}
	return a
}

func (b *astBuilder) plainElement(n, tagNode *sitter.Node, attrs []rawAttr, children []Node) Node {
	el := &Element{
		Name:     b.text(tagNode),
		NameSpan: b.span(tagNode),
		FullSpan: b.span(n),
		Children: children,
	}
	var structural *rawAttr
	for i := range attrs {
		a := attrs[i]
		if strings.HasPrefix(a.name, "*") && structural == nil {
			structural = &attrs[i]
			continue
		}
		b.classify(a, el, nil)
	}
	if structural == nil {
		return el
	}
	return b.structuralTemplate(*structural, el)
}

func (b *astBuilder) ngTemplate(n, tagNode *sitter.Node, attrs []rawAttr, children []Node) Node {
	tpl := &Template{
		Tag:      b.text(tagNode),
		TagSpan:  b.span(tagNode),
		FullSpan: b.span(n),
		Children: children,
	}
	for _, a := range attrs {
		b.classify(a, nil, tpl)
	}
	return tpl
}

// classify sorts a raw attribute into the binding buckets of its owner;
// exactly one of el, tpl is non-nil
func (b *astBuilder) classify(a rawAttr, el *Element, tpl *Template) {
	var owner Node
	if el != nil {
		owner = el
	} else {
		owner = tpl
	}
	addInput := func(in *BoundAttribute) {
		b.parents[in] = owner
		if el != nil {
			el.Inputs = append(el.Inputs, in)
		} else {
			tpl.Inputs = append(tpl.Inputs, in)
		}
	}
	addOutput := func(out *BoundEvent) {
		b.parents[out] = owner
		if el != nil {
			el.Outputs = append(el.Outputs, out)
		} else {
			tpl.Outputs = append(tpl.Outputs, out)
		}
	}

	name := a.name
	switch {
	case strings.HasPrefix(name, "[(") && strings.HasSuffix(name, ")]"):
		inner := name[2 : len(name)-2]
		keySpan := NewSourceSpan(a.keySpan.Start+2, a.keySpan.End-2)
		in := &BoundAttribute{Name: inner, KeySpan: keySpan, ValueSpan: a.valueSpan, FullSpan: a.fullSpan, TwoWay: true}
		out := &BoundEvent{Name: inner + "Change", KeySpan: keySpan, HandlerSpan: a.valueSpan, FullSpan: a.fullSpan, FromTwoWay: true}
		if a.hasValue {
			in.Value = ParseBinding(a.value, a.valueSpan.Start)
			out.Handler = ParseBinding(a.value, a.valueSpan.Start)
		}
		addInput(in)
		addOutput(out)
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		in := &BoundAttribute{
			Name:      name[1 : len(name)-1],
			KeySpan:   NewSourceSpan(a.keySpan.Start+1, a.keySpan.End-1),
			ValueSpan: a.valueSpan,
			FullSpan:  a.fullSpan,
		}
		if a.hasValue {
			in.Value = ParseBinding(a.value, a.valueSpan.Start)
		}
		addInput(in)
	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"):
		out := &BoundEvent{
			Name:        name[1 : len(name)-1],
			KeySpan:     NewSourceSpan(a.keySpan.Start+1, a.keySpan.End-1),
			HandlerSpan: a.valueSpan,
			FullSpan:    a.fullSpan,
		}
		if a.hasValue {
			out.Handler = ParseBinding(a.value, a.valueSpan.Start)
		}
		addOutput(out)
	case strings.HasPrefix(name, "bind-"):
		in := &BoundAttribute{
			Name:      name[len("bind-"):],
			KeySpan:   NewSourceSpan(a.keySpan.Start+len("bind-"), a.keySpan.End),
			ValueSpan: a.valueSpan,
			FullSpan:  a.fullSpan,
		}
		if a.hasValue {
			in.Value = ParseBinding(a.value, a.valueSpan.Start)
		}
		addInput(in)
	case strings.HasPrefix(name, "on-"):
		out := &BoundEvent{
			Name:        name[len("on-"):],
			KeySpan:     NewSourceSpan(a.keySpan.Start+len("on-"), a.keySpan.End),
			HandlerSpan: a.valueSpan,
			FullSpan:    a.fullSpan,
		}
		if a.hasValue {
			out.Handler = ParseBinding(a.value, a.valueSpan.Start)
		}
		addOutput(out)
	case strings.HasPrefix(name, "#"):
		ref := &Reference{
			Name:      name[1:],
			Value:     a.value,
			KeySpan:   NewSourceSpan(a.keySpan.Start+1, a.keySpan.End),
			ValueSpan: a.valueSpan,
			FullSpan:  a.fullSpan,
		}
		b.parents[ref] = owner
		if el != nil {
			el.References = append(el.References, ref)
		} else {
			tpl.References = append(tpl.References, ref)
		}
	case strings.HasPrefix(name, "ref-"):
		ref := &Reference{
			Name:      name[len("ref-"):],
			Value:     a.value,
			KeySpan:   NewSourceSpan(a.keySpan.Start+len("ref-"), a.keySpan.End),
			ValueSpan: a.valueSpan,
			FullSpan:  a.fullSpan,
		}
		b.parents[ref] = owner
		if el != nil {
			el.References = append(el.References, ref)
		} else {
			tpl.References = append(tpl.References, ref)
		}
	case strings.HasPrefix(name, "let-") && tpl != nil:
		v := &Variable{
			Name:      name[len("let-"):],
			Value:     a.value,
			KeySpan:   NewSourceSpan(a.keySpan.Start+len("let-"), a.keySpan.End),
			ValueSpan: a.valueSpan,
			FullSpan:  a.fullSpan,
		}
		if !a.hasValue {
			v.Value = "$implicit"
			v.ValueSpan = v.KeySpan
		}
		b.parents[v] = owner
		tpl.Variables = append(tpl.Variables, v)
	default:
		attr := &TextAttribute{
			Name:      a.name,
			Value:     a.value,
			KeySpan:   a.keySpan,
			ValueSpan: a.valueSpan,
			FullSpan:  a.fullSpan,
		}
		b.parents[attr] = owner
		if el != nil {
			el.Attributes = append(el.Attributes, attr)
		} else {
			tpl.Attributes = append(tpl.Attributes, attr)
		}
	}
}

// structuralTemplate wraps an element carrying a *directive attribute
// in a synthetic Template node, expanding the microsyntax into the
// template's variables and inputs
func (b *astBuilder) structuralTemplate(a rawAttr, el *Element) Node {
	dirName := a.name[1:]
	tpl := &Template{
		Tag:      el.Name,
		TagSpan:  el.NameSpan,
		FullSpan: el.FullSpan,
		Children: []Node{el},
	}
	attr := &TextAttribute{
		Name:      dirName,
		Value:     a.value,
		KeySpan:   NewSourceSpan(a.keySpan.Start+1, a.keySpan.End),
		ValueSpan: a.valueSpan,
		FullSpan:  a.fullSpan,
	}
	b.parents[attr] = tpl
	tpl.Attributes = append(tpl.Attributes, attr)
	if a.hasValue {
		b.parseMicrosyntax(dirName, a.value, a.valueSpan.Start, tpl)
	}
	return tpl
}

// parseMicrosyntax expands the *directive shorthand: a leading bare
// expression binds the directive's own input, "let x [= key]" declares
// variables, "of expr" and "; key: expr" bind keyed inputs, and
// "as x" aliases the directive value
func (b *astBuilder) parseMicrosyntax(dirName, src string, base int, tpl *Template) {
	i := 0
	addInput := func(name string, keySpan SourceSpan, valStart, valEnd int) {
		for valStart < valEnd && isSpaceByte(src[valStart]) {
			valStart++
		}
		for valEnd > valStart && isSpaceByte(src[valEnd-1]) {
			valEnd--
		}
		in := &BoundAttribute{
			Name:      name,
			KeySpan:   keySpan,
			ValueSpan: NewSourceSpan(base+valStart, base+valEnd),
			FullSpan:  NewSourceSpan(base+valStart, base+valEnd),
			Value:     ParseBinding(src[valStart:valEnd], base+valStart),
		}
		b.parents[in] = tpl
		tpl.Inputs = append(tpl.Inputs, in)
	}

	first := true
	for i < len(src) {
		for i < len(src) && (isSpaceByte(src[i]) || src[i] == ';' || src[i] == ',') {
			i++
		}
		if i >= len(src) {
			break
		}
		word, wordEnd := scanIdent(src, i)
		switch word {
		case "let":
			i = wordEnd
			for i < len(src) && isSpaceByte(src[i]) {
				i++
			}
			name, nameEnd := scanIdent(src, i)
			if name == "" {
				i++
				continue
			}
			v := &Variable{
				Name:      name,
				Value:     "$implicit",
				KeySpan:   NewSourceSpan(base+i, base+nameEnd),
				ValueSpan: NewSourceSpan(base+i, base+nameEnd),
				FullSpan:  NewSourceSpan(base+i, base+nameEnd),
			}
			i = nameEnd
			for i < len(src) && isSpaceByte(src[i]) {
				i++
			}
			if i < len(src) && src[i] == '=' {
				i++
				for i < len(src) && isSpaceByte(src[i]) {
					i++
				}
				key, keyEnd := scanIdent(src, i)
				if key != "" {
					v.Value = key
					v.ValueSpan = NewSourceSpan(base+i, base+keyEnd)
					i = keyEnd
				}
			}
			b.parents[v] = tpl
			tpl.Variables = append(tpl.Variables, v)
		case "as":
			i = wordEnd
			for i < len(src) && isSpaceByte(src[i]) {
				i++
			}
			name, nameEnd := scanIdent(src, i)
			if name == "" {
				i++
				continue
			}
			v := &Variable{
				Name:      name,
				Value:     dirName,
				KeySpan:   NewSourceSpan(base+i, base+nameEnd),
				ValueSpan: NewSourceSpan(base+i, base+nameEnd),
				FullSpan:  NewSourceSpan(base+i, base+nameEnd),
			}
			b.parents[v] = tpl
			tpl.Variables = append(tpl.Variables, v)
			i = nameEnd
		case "":
			i++
		default:
			if first {
				// leading bare expression binds the directive itself
				end := clauseEnd(src, i)
				addInput(dirName, NewSourceSpan(base+i, base+end), i, end)
				i = end
				break
			}
			// "of expr" / "key: expr" bind a keyed input
			keySpan := NewSourceSpan(base+i, base+wordEnd)
			rest := wordEnd
			if rest < len(src) && src[rest] == ':' {
				rest++
			}
			end := clauseEnd(src, rest)
			addInput(dirName+titleCase(word), keySpan, rest, end)
			i = end
		}
		first = false
	}
}

// clauseEnd finds the end of the current microsyntax clause: the next
// ';' separator or a trailing "let"/"as" keyword at depth zero
func clauseEnd(src string, i int) int {
	for i < len(src) {
		if src[i] == ';' {
			return i
		}
		if isIdentStart(src[i]) {
			word, end := scanIdent(src, i)
			if word == "let" || word == "as" {
				return i
			}
			i = end
			continue
		}
		i++
	}
	return len(src)
}

func scanIdent(src string, i int) (string, int) {
	start := i
	for i < len(src) && isIdentPart(src[i]) {
		i++
	}
	return src[start:i], i
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
