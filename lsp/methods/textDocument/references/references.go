package references

import (
	"github.com/pwwpche/angular-template-lsp/internal/log"
	"github.com/pwwpche/angular-template-lsp/internal/position"
	"github.com/pwwpche/angular-template-lsp/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// References returns all references to the semantic entity at the
// cursor: identifier usages in logic sources, their appearances in
// templates, and (for element and attribute positions) the directive
// classes bound there. A nil result means nothing resolvable sits at
// the position.
func References(ctx types.ServerContext, context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI

	text, ok := ctx.DocumentText(uri)
	if !ok {
		log.Debug("References requested for unknown document: %s", uri)
		return nil, nil
	}

	offset := position.OffsetAt(text, int(params.Position.Line), int(params.Position.Character))
	entries := ctx.References(uri, offset)
	if len(entries) == 0 {
		return nil, nil
	}

	locations := make([]protocol.Location, 0, len(entries))
	for _, entry := range entries {
		entryText, ok := ctx.DocumentText(entry.URI)
		if !ok {
			continue
		}
		startLine, startChar := position.PositionAt(entryText, entry.Span.Start)
		endLine, endChar := position.PositionAt(entryText, entry.Span.End)
		locations = append(locations, protocol.Location{
			URI: entry.URI,
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(startLine), Character: uint32(startChar)},
				End:   protocol.Position{Line: uint32(endLine), Character: uint32(endChar)},
			},
		})
	}

	log.Debug("Found %d references for %s", len(locations), uri)
	return locations, nil
}
