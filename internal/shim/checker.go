package shim

import (
	"strings"
	"sync"

	"github.com/pwwpche/angular-template-lsp/internal/log"
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/selector"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// DocumentSource supplies current document text by URI; open editor
// buffers win over disk content
type DocumentSource interface {
	DocumentText(uri string) (string, bool)
}

// Checker owns the shim program: every component's parsed template,
// generated shim file, and mapping table. It is the single context
// object the reference engine works against.
type Checker struct {
	mu       sync.Mutex
	registry *project.Registry
	docs     DocumentSource

	records []*Record
	byShim  map[string]*Record
	// cache keys a record by component identity and template text so
	// EnsureCurrent is cheap when nothing changed
	cache map[string]*Record
}

// NewChecker creates a checker over a project registry and a document
// source
func NewChecker(registry *project.Registry, docs DocumentSource) *Checker {
	return &Checker{
		registry: registry,
		docs:     docs,
		byShim:   map[string]*Record{},
		cache:    map[string]*Record{},
	}
}

// Registry returns the project registry the checker builds from
func (c *Checker) Registry() *project.Registry {
	return c.registry
}

// EnsureCurrent brings the shim program up to date with the registry
// and open documents. Regeneration is idempotent: components whose
// template text is unchanged keep their existing record.
func (c *Checker) EnsureCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := c.registry.Directives()
	fresh := map[string]*Record{}
	var records []*Record
	byShim := map[string]*Record{}

	for _, comp := range c.registry.Components() {
		text, templateURI, ok := c.templateText(comp)
		if !ok {
			continue
		}
		key := comp.URI + "\x00" + comp.Name + "\x00" + text
		if rec, hit := c.cache[key]; hit {
			fresh[key] = rec
			records = append(records, rec)
			byShim[rec.File.URI] = rec
			continue
		}
		ast, err := template.Parse(text)
		if err != nil {
			log.Warn("template parse failed for %s: %v", comp.Name, err)
			continue
		}
		rec := &Record{Component: comp, AST: ast, TemplateURI: templateURI}
		generate(rec, candidates)
		fresh[key] = rec
		records = append(records, rec)
		byShim[rec.File.URI] = rec
	}

	c.cache = fresh
	c.records = records
	c.byShim = byShim
}

// templateText recovers a component's current template text and the
// URI of the document that holds it
func (c *Checker) templateText(comp *project.ComponentMeta) (string, string, bool) {
	if comp.InlineTemplate {
		return comp.TemplateText, comp.URI, true
	}
	if comp.TemplateURI == "" {
		return "", "", false
	}
	text, ok := c.docs.DocumentText(comp.TemplateURI)
	if !ok {
		return "", "", false
	}
	return text, comp.TemplateURI, true
}

// Records returns the current shim records in component order
func (c *Checker) Records() []*Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records
}

// TemplateInfoAt resolves a document position to the template it falls
// inside, translated into template-text coordinates. Absent for plain
// logic-source positions.
func (c *Checker) TemplateInfoAt(uri string, offset int) (*TemplateInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.records {
		comp := rec.Component
		if comp.InlineTemplate {
			if comp.URI != uri {
				continue
			}
			end := comp.TemplateStart + len(comp.TemplateText)
			if offset >= comp.TemplateStart && offset < end {
				return &TemplateInfo{Record: rec, Offset: offset - comp.TemplateStart}, true
			}
			continue
		}
		if comp.TemplateURI == uri {
			return &TemplateInfo{Record: rec, Offset: offset}, true
		}
	}
	return nil, false
}

// LocateNode finds the tightest template node at a template-text
// offset; two-way bindings yield the node pair instead
func (c *Checker) LocateNode(rec *Record, offset int) (template.Node, *template.TwoWay) {
	return rec.AST.NodeAt(offset)
}

// IsTrackedShim reports whether a URI names a generated shim file
func (c *Checker) IsTrackedShim(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byShim[uri]
	return ok
}

// LocateShimNode returns the shim token at an offset, with its
// synthetic flag
func (c *Checker) LocateShimNode(uri string, offset int) (Token, bool) {
	c.mu.Lock()
	rec, ok := c.byShim[uri]
	c.mu.Unlock()
	if !ok {
		return Token{}, false
	}
	return rec.File.TokenAt(offset)
}

// MapShimPosition translates a shim offset through the mapping table
func (c *Checker) MapShimPosition(uri string, offset int) (Mapping, bool) {
	c.mu.Lock()
	rec, ok := c.byShim[uri]
	c.mu.Unlock()
	if !ok {
		return Mapping{}, false
	}
	return rec.File.MappingAt(offset)
}

// MatchDirectives returns the candidates whose selector matches the
// target, preserving candidate order
func (c *Checker) MatchDirectives(target selector.Target, candidates []*project.DirectiveMeta) []*project.DirectiveMeta {
	var matched []*project.DirectiveMeta
	for _, d := range candidates {
		if d.Selector == "" {
			continue
		}
		if selector.MatchesAny(selector.Parse(d.Selector), target) {
			matched = append(matched, d)
		}
	}
	return matched
}

// textOf returns the searchable text of a file: shim text for tracked
// shims, otherwise the registered or open document text
func (c *Checker) textOf(uri string) (string, bool) {
	c.mu.Lock()
	rec, isShim := c.byShim[uri]
	c.mu.Unlock()
	if isShim {
		return rec.File.Text, true
	}
	if text, ok := c.registry.SourceText(uri); ok {
		return text, true
	}
	if c.docs != nil {
		return c.docs.DocumentText(uri)
	}
	return "", false
}

// identAt expands the identifier containing the given offset
func identAt(text string, offset int) string {
	if offset < 0 || offset >= len(text) || !isWordByte(text[offset]) {
		return ""
	}
	start := offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	end := offset
	for end < len(text) && isWordByte(text[end]) {
		end++
	}
	return text[start:end]
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// wordOccurrences finds word-boundary occurrences of name in text
func wordOccurrences(text, name string) []template.SourceSpan {
	var out []template.SourceSpan
	if name == "" {
		return out
	}
	from := 0
	for {
		idx := strings.Index(text[from:], name)
		if idx < 0 {
			return out
		}
		start := from + idx
		end := start + len(name)
		boundedLeft := start == 0 || !isWordByte(text[start-1])
		boundedRight := end == len(text) || !isWordByte(text[end])
		if boundedLeft && boundedRight {
			out = append(out, template.NewSourceSpan(start, end))
		}
		from = end
	}
}
