// Package shim implements the type-checker side of reference
// resolution: it generates a synthetic, searchable representation of
// each component template (the "shim"), keeps the bidirectional
// mapping between shim positions and authored source spans, classifies
// template nodes into symbols, and runs the host reference search.
package shim

import (
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// Location identifies a position inside a generated shim file
type Location struct {
	URI    string
	Offset int
}

// MappingKind classifies the provenance of a shim position
type MappingKind int

const (
	// MappingDirect maps into the component's own source file (inline
	// template)
	MappingDirect MappingKind = iota
	// MappingExternal maps into an external template document
	MappingExternal
	// MappingIndirect has no usable source location (synthetic or
	// interpolated template text)
	MappingIndirect
)

// Mapping is one entry of a shim file's position mapping table
type Mapping struct {
	// ShimSpan is the mapped token's span in the shim text
	ShimSpan template.SourceSpan
	Kind     MappingKind
	// FileURI is the mapped source document (unset for Indirect)
	FileURI string
	// SourceSpan is the authored span in FileURI
	SourceSpan template.SourceSpan
}

// Token is one node of a shim file's token index
type Token struct {
	Span template.SourceSpan
	// Synthetic marks constructs that were never user-authored, such
	// as the $event parameter of generated event handlers
	Synthetic bool
}

// File is a generated shim document with its token index and mapping
// table
type File struct {
	URI      string
	Text     string
	Tokens   []Token
	Mappings []Mapping
	// locals are the generated variable names of this shim. Their
	// numbering restarts per shim, so they are scoped to the file and
	// must never match a search seeded elsewhere.
	locals map[string]struct{}
}

// Local reports whether name is one of this shim's generated locals
func (f *File) Local(name string) bool {
	_, ok := f.locals[name]
	return ok
}

// TokenAt returns the token containing the given offset
func (f *File) TokenAt(offset int) (Token, bool) {
	for _, t := range f.Tokens {
		if t.Span.Contains(offset) {
			return t, true
		}
	}
	return Token{}, false
}

// MappingAt returns the mapping entry containing the given offset
func (f *File) MappingAt(offset int) (Mapping, bool) {
	for _, m := range f.Mappings {
		if m.ShimSpan.Contains(offset) {
			return m, true
		}
	}
	return Mapping{}, false
}

// RawRef is an untranslated result of the host reference search; its
// URI may denote either genuine source or a shim file
type RawRef struct {
	URI  string
	Span template.SourceSpan
}

// BindingTarget pairs a directive with the shim location of one bound
// input or output
type BindingTarget struct {
	Directive *project.DirectiveMeta
	Location  Location
}

// bindingTarget is the generator-internal form, before the shim URI is
// known
type bindingTarget struct {
	directive *project.DirectiveMeta
	offset    int
}

// varLocs are the two shim positions of a template variable
type varLocs struct {
	local int
	init  int
}

// Record ties a component to its parsed template and generated shim
type Record struct {
	Component *project.ComponentMeta
	AST       *template.AST
	File      *File
	// TemplateURI is the document holding the template text: the
	// external template, or the component source for inline templates
	TemplateURI string

	vars     map[*template.Variable]varLocs
	locs     map[template.Node]int
	matched  map[template.Node][]*project.DirectiveMeta
	bindings map[template.Node][]bindingTarget
	entities map[string]template.Node
}

// VarLocations returns the local-variable and initializer shim
// locations of a template variable declaration
func (r *Record) VarLocations(v *template.Variable) (local, init Location, ok bool) {
	l, found := r.vars[v]
	if !found {
		return Location{}, Location{}, false
	}
	return Location{URI: r.File.URI, Offset: l.local},
		Location{URI: r.File.URI, Offset: l.init}, true
}

// NodeLocation returns the shim location recorded for a template or
// expression node
func (r *Record) NodeLocation(n template.Node) (Location, bool) {
	off, ok := r.locs[n]
	if !ok {
		return Location{}, false
	}
	return Location{URI: r.File.URI, Offset: off}, true
}

// MatchedDirectives returns the directives matched on an element or
// template node
func (r *Record) MatchedDirectives(n template.Node) []*project.DirectiveMeta {
	return r.matched[n]
}

// Bindings returns the directive binding targets of an attribute node
func (r *Record) Bindings(n template.Node) []BindingTarget {
	targets := r.bindings[n]
	out := make([]BindingTarget, 0, len(targets))
	for _, t := range targets {
		out = append(out, BindingTarget{
			Directive: t.directive,
			Location:  Location{URI: r.File.URI, Offset: t.offset},
		})
	}
	return out
}

// Entity returns the in-scope variable or reference declaration for a
// name, if one exists
func (r *Record) Entity(name string) (template.Node, bool) {
	n, ok := r.entities[name]
	return n, ok
}

// TemplateInfo locates a request position inside a component template
type TemplateInfo struct {
	Record *Record
	// Offset is the position translated into template-text coordinates
	Offset int
}
