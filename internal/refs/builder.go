// Package refs implements cross-space reference resolution: given a
// position in a template or a logic source, it finds every other
// location referring to the same entity, translating shim-space
// results back to authored source along the way.
package refs

import (
	"fmt"

	"github.com/pwwpche/angular-template-lsp/internal/collections"
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/selector"
	"github.com/pwwpche/angular-template-lsp/internal/shim"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// Entry is one resolved reference. Its URI always denotes
// human-authored source: shim files never leak into results.
type Entry struct {
	URI  string
	Span template.SourceSpan
}

// TypeChecker is the contract the engine needs from the shim program
// owner; *shim.Checker implements it, tests may substitute mocks
type TypeChecker interface {
	EnsureCurrent()
	TemplateInfoAt(uri string, offset int) (*shim.TemplateInfo, bool)
	LocateNode(rec *shim.Record, offset int) (template.Node, *template.TwoWay)
	ClassifySymbol(node template.Node, rec *shim.Record) *shim.Symbol
	FindReferences(uri string, offset int) []shim.RawRef
	IsTrackedShim(uri string) bool
	LocateShimNode(uri string, offset int) (shim.Token, bool)
	MapShimPosition(uri string, offset int) (shim.Mapping, bool)
	MatchDirectives(target selector.Target, candidates []*project.DirectiveMeta) []*project.DirectiveMeta
}

// Builder is the reference-resolution entry point
type Builder struct {
	checker TypeChecker
}

// NewBuilder creates a Builder over a type checker
func NewBuilder(checker TypeChecker) *Builder {
	return &Builder{checker: checker}
}

// Get returns every reference to the entity at (uri, offset), or nil
// when nothing is found. offset is a byte offset into the document's
// current text. "Nothing found" is never an error.
func (b *Builder) Get(uri string, offset int) []Entry {
	b.checker.EnsureCurrent()

	if info, ok := b.checker.TemplateInfoAt(uri, offset); ok {
		return dedup(b.fromTemplatePosition(info))
	}
	// plain logic-source position: search and translate directly
	return dedup(b.search(uri, offset))
}

// fromTemplatePosition resolves a position inside a template: locate
// the node(s), classify each into a symbol, and dispatch by kind
func (b *Builder) fromTemplatePosition(info *shim.TemplateInfo) []Entry {
	node, twoWay := b.checker.LocateNode(info.Record, info.Offset)

	var nodes []template.Node
	switch {
	case twoWay != nil:
		// both halves of a [(binding)] resolve, results unioned
		nodes = []template.Node{twoWay.Bound, twoWay.Event}
	case node != nil:
		nodes = []template.Node{node}
	default:
		return nil
	}

	var out []Entry
	for _, n := range nodes {
		sym := b.checker.ClassifySymbol(n, info.Record)
		if sym == nil {
			continue
		}
		out = append(out, b.resolveSymbol(sym, n, info.Offset)...)
	}
	return out
}

// dedup removes duplicate entries, keeping first-seen order
func dedup(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	seen := collections.NewSet[string]()
	var out []Entry
	for _, e := range entries {
		key := fmt.Sprintf("%s:%d:%d", e.URI, e.Span.Start, e.Span.End)
		if seen.Has(key) {
			continue
		}
		seen.Add(key)
		out = append(out, e)
	}
	return out
}
