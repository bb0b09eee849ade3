package refs

import (
	"github.com/pwwpche/angular-template-lsp/internal/shim"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

// search runs the host reference search from a position and partitions
// the raw results: hits in genuine source pass through unchanged, hits
// inside tracked shim files are translated back to authored template
// positions. Untranslatable shim hits are dropped, never surfaced.
func (b *Builder) search(uri string, offset int) []Entry {
	var out []Entry
	for _, raw := range b.checker.FindReferences(uri, offset) {
		if !b.checker.IsTrackedShim(raw.URI) {
			out = append(out, Entry{URI: raw.URI, Span: raw.Span})
			continue
		}
		if entry, ok := b.translate(raw.URI, raw.Span); ok {
			out = append(out, entry)
		}
	}
	return out
}

// translate maps one shim-space span back to authored source. It
// rejects spans that land on no indexed token, on synthetic tokens,
// and on positions whose template text has no static provenance.
func (b *Builder) translate(shimURI string, span template.SourceSpan) (Entry, bool) {
	token, ok := b.checker.LocateShimNode(shimURI, span.Start)
	if !ok || token.Synthetic {
		return Entry{}, false
	}
	mapping, ok := b.checker.MapShimPosition(shimURI, span.Start)
	if !ok || mapping.Kind == shim.MappingIndirect {
		return Entry{}, false
	}
	return Entry{URI: mapping.FileURI, Span: mapping.SourceSpan}, true
}
