// Package project tracks the logic sources of a workspace: which
// classes are components, directives, and pipes, where their
// declarations live, and which template each component owns.
package project

import (
	"fmt"
	"path"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// PropertyBinding is an @Input or @Output member of a directive class
type PropertyBinding struct {
	// ClassProperty is the member name on the class
	ClassProperty string
	// BindingName is the template-facing name (alias or member name)
	BindingName string
	// Span is the member name's span in the source file
	Span template.SourceSpan
}

// DirectiveMeta describes one @Directive or @Component class
type DirectiveMeta struct {
	Name      string
	URI       string
	NameSpan  template.SourceSpan
	Selector  string
	ExportAs  string
	Component bool
	Inputs    []PropertyBinding
	Outputs   []PropertyBinding
}

// Input returns the input whose template-facing name matches, if any
func (d *DirectiveMeta) Input(bindingName string) (PropertyBinding, bool) {
	for _, in := range d.Inputs {
		if in.BindingName == bindingName {
			return in, true
		}
	}
	return PropertyBinding{}, false
}

// Output returns the output whose template-facing name matches, if any
func (d *DirectiveMeta) Output(bindingName string) (PropertyBinding, bool) {
	for _, out := range d.Outputs {
		if out.BindingName == bindingName {
			return out, true
		}
	}
	return PropertyBinding{}, false
}

// PipeMeta describes one @Pipe class
type PipeMeta struct {
	Name      string
	ClassName string
	URI       string
	NameSpan  template.SourceSpan
}

// ComponentMeta is a DirectiveMeta that owns a template
type ComponentMeta struct {
	DirectiveMeta
	// TemplateURI is the external template document ("" when inline)
	TemplateURI string
	// InlineTemplate marks a template authored in the source file
	InlineTemplate bool
	// TemplateText is the recovered template markup (inline only)
	TemplateText string
	// TemplateStart is the byte offset of TemplateText in the source
	TemplateStart int
	// TemplateIndirect marks a template whose text could not be
	// statically recovered as a plain literal (interpolated template
	// string); positions inside it have no usable provenance
	TemplateIndirect bool
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

var jsParserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JavaScript language: %v", err))
		}
		return parser
	},
}

// CloseParserPool closes all pooled source parsers
func CloseParserPool() {
	for range 100 {
		if p, ok := jsParserPool.Get().(*sitter.Parser); ok && p != nil {
			p.Close()
		}
	}
}

// scanSource extracts directive, component, and pipe metadata from a
// logic source. tree-sitter's error recovery keeps extraction working
// on sources the JavaScript grammar cannot fully parse; anything that
// fails to parse is simply absent from the result.
func scanSource(uri, source string) (comps []*ComponentMeta, dirs []*DirectiveMeta, pipes []*PipeMeta) {
	parser := jsParserPool.Get().(*sitter.Parser)
	parser.Reset()
	defer jsParserPool.Put(parser)

	sourceBytes := []byte(source)
	tree := parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil, nil, nil
	}
	defer tree.Close()

	s := &sourceScanner{uri: uri, source: source}
	s.walk(tree.RootNode())
	return s.components, s.directives, s.pipes
}

type sourceScanner struct {
	uri        string
	source     string
	components []*ComponentMeta
	directives []*DirectiveMeta
	pipes      []*PipeMeta
}

func (s *sourceScanner) text(n *sitter.Node) string {
	return s.source[n.StartByte():n.EndByte()]
}

func (s *sourceScanner) span(n *sitter.Node) template.SourceSpan {
	return template.NewSourceSpan(int(n.StartByte()), int(n.EndByte()))
}

func (s *sourceScanner) walk(n *sitter.Node) {
	if n.Kind() == "class_declaration" {
		s.classDeclaration(n)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		s.walk(n.NamedChild(i))
	}
}

func (s *sourceScanner) classDeclaration(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	for _, dec := range classDecorators(n) {
		decName, meta := s.decoratorCall(dec)
		switch decName {
		case "Component", "Directive":
			d := DirectiveMeta{
				Name:      s.text(nameNode),
				URI:       s.uri,
				NameSpan:  s.span(nameNode),
				Selector:  s.metaString(meta, "selector"),
				ExportAs:  s.metaString(meta, "exportAs"),
				Component: decName == "Component",
			}
			d.Inputs, d.Outputs = s.classBindings(n)
			if decName == "Component" {
				comp := &ComponentMeta{DirectiveMeta: d}
				s.componentTemplate(meta, comp)
				s.components = append(s.components, comp)
				s.directives = append(s.directives, &comp.DirectiveMeta)
			} else {
				s.directives = append(s.directives, &d)
			}
			return
		case "Pipe":
			s.pipes = append(s.pipes, &PipeMeta{
				Name:      s.metaString(meta, "name"),
				ClassName: s.text(nameNode),
				URI:       s.uri,
				NameSpan:  s.span(nameNode),
			})
			return
		}
	}
}

// classDecorators collects the decorator nodes attached to a class.
// For `@Component(...) export class X {}` the grammar hangs the
// decorator off the enclosing export_statement, as a sibling of the
// class_declaration, so the parent's children are scanned too.
func classDecorators(n *sitter.Node) []*sitter.Node {
	var decs []*sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child.Kind() == "decorator" {
			decs = append(decs, child)
		}
	}
	if parent := n.Parent(); parent != nil && parent.Kind() == "export_statement" {
		for i := uint(0); i < parent.NamedChildCount(); i++ {
			if child := parent.NamedChild(i); child.Kind() == "decorator" {
				decs = append(decs, child)
			}
		}
	}
	return decs
}

// decoratorCall unwraps @Name({...}) into the decorator name and its
// metadata object node (nil when the decorator takes no object)
func (s *sourceScanner) decoratorCall(dec *sitter.Node) (string, *sitter.Node) {
	for i := uint(0); i < dec.NamedChildCount(); i++ {
		child := dec.NamedChild(i)
		switch child.Kind() {
		case "identifier":
			return s.text(child), nil
		case "call_expression":
			fn := child.ChildByFieldName("function")
			if fn == nil {
				return "", nil
			}
			name := s.text(fn)
			args := child.ChildByFieldName("arguments")
			if args != nil {
				for j := uint(0); j < args.NamedChildCount(); j++ {
					if arg := args.NamedChild(j); arg.Kind() == "object" {
						return name, arg
					}
				}
			}
			return name, nil
		}
	}
	return "", nil
}

// metaString reads a string-valued key from a decorator metadata object
func (s *sourceScanner) metaString(meta *sitter.Node, key string) string {
	value := s.metaValue(meta, key)
	if value == nil {
		return ""
	}
	if text, _, ok := s.stringValue(value); ok {
		return text
	}
	return ""
}

func (s *sourceScanner) metaValue(meta *sitter.Node, key string) *sitter.Node {
	if meta == nil {
		return nil
	}
	for i := uint(0); i < meta.NamedChildCount(); i++ {
		pair := meta.NamedChild(i)
		if pair.Kind() != "pair" {
			continue
		}
		keyNode := pair.ChildByFieldName("key")
		if keyNode == nil {
			continue
		}
		name := strings.Trim(s.text(keyNode), `"'`)
		if name == key {
			return pair.ChildByFieldName("value")
		}
	}
	return nil
}

// stringValue extracts the literal text of a string or template string
// node and the byte offset where the text starts; ok is false for
// non-literal values
func (s *sourceScanner) stringValue(n *sitter.Node) (text string, start int, ok bool) {
	switch n.Kind() {
	case "string":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if frag := n.NamedChild(i); frag.Kind() == "string_fragment" {
				return s.text(frag), int(frag.StartByte()), true
			}
		}
		// empty string literal
		return "", int(n.StartByte()) + 1, true
	case "template_string":
		start := int(n.StartByte()) + 1
		end := int(n.EndByte()) - 1
		if end < start {
			end = start
		}
		return s.source[start:end], start, true
	}
	return "", 0, false
}

// hasSubstitution reports whether a template string interpolates
func hasSubstitution(n *sitter.Node) bool {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if n.NamedChild(i).Kind() == "template_substitution" {
			return true
		}
	}
	return false
}

func (s *sourceScanner) componentTemplate(meta *sitter.Node, comp *ComponentMeta) {
	if tpl := s.metaValue(meta, "template"); tpl != nil {
		text, start, ok := s.stringValue(tpl)
		if !ok {
			// computed template expression: no usable provenance
			comp.InlineTemplate = true
			comp.TemplateIndirect = true
			return
		}
		comp.InlineTemplate = true
		comp.TemplateText = text
		comp.TemplateStart = start
		if tpl.Kind() == "template_string" && hasSubstitution(tpl) {
			comp.TemplateIndirect = true
		}
		return
	}
	if url := s.metaValue(meta, "templateUrl"); url != nil {
		if text, _, ok := s.stringValue(url); ok {
			comp.TemplateURI = ResolveTemplateURI(s.uri, text)
		}
	}
}

// classBindings collects @Input and @Output members of a class body
func (s *sourceScanner) classBindings(class *sitter.Node) (inputs, outputs []PropertyBinding) {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil, nil
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		kind := member.Kind()
		if kind != "field_definition" && kind != "method_definition" {
			continue
		}
		var propNode *sitter.Node
		if kind == "field_definition" {
			propNode = member.ChildByFieldName("property")
		} else {
			propNode = member.ChildByFieldName("name")
		}
		if propNode == nil {
			continue
		}
		for j := uint(0); j < member.NamedChildCount(); j++ {
			dec := member.NamedChild(j)
			if dec.Kind() != "decorator" {
				continue
			}
			decName, _ := s.decoratorCall(dec)
			alias := s.decoratorStringArg(dec)
			binding := PropertyBinding{
				ClassProperty: s.text(propNode),
				BindingName:   s.text(propNode),
				Span:          s.span(propNode),
			}
			if alias != "" {
				binding.BindingName = alias
			}
			switch decName {
			case "Input":
				inputs = append(inputs, binding)
			case "Output":
				outputs = append(outputs, binding)
			}
		}
	}
	return inputs, outputs
}

// decoratorStringArg returns the first string argument of a decorator
// call, used for @Input('alias') style aliases
func (s *sourceScanner) decoratorStringArg(dec *sitter.Node) string {
	for i := uint(0); i < dec.NamedChildCount(); i++ {
		child := dec.NamedChild(i)
		if child.Kind() != "call_expression" {
			continue
		}
		args := child.ChildByFieldName("arguments")
		if args == nil {
			return ""
		}
		for j := uint(0); j < args.NamedChildCount(); j++ {
			if text, _, ok := s.stringValue(args.NamedChild(j)); ok {
				return text
			}
		}
	}
	return ""
}

// ResolveTemplateURI resolves a relative templateUrl against the URI of
// the component source that declares it
func ResolveTemplateURI(sourceURI, templateURL string) string {
	if strings.Contains(templateURL, "://") {
		return templateURL
	}
	slash := strings.LastIndexByte(sourceURI, '/')
	if slash < 0 {
		return templateURL
	}
	combined := sourceURI[:slash] + "/" + templateURL
	if idx := strings.Index(combined, "://"); idx >= 0 {
		scheme := combined[:idx+3]
		return scheme + path.Clean(combined[idx+3:])
	}
	return path.Clean(combined)
}
