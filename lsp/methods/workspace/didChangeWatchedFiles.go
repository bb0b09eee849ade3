package workspace

import (
	"github.com/pwwpche/angular-template-lsp/internal/log"
	"github.com/pwwpche/angular-template-lsp/internal/uriutil"
	"github.com/pwwpche/angular-template-lsp/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWatchedFiles handles the workspace/didChangeWatchedFiles notification
func DidChangeWatchedFiles(ctx types.ServerContext, context *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	log.Debug("Watched files changed: %d files", len(params.Changes))

	for _, change := range params.Changes {
		uri := change.URI
		path := uriutil.URIToPath(uri)
		log.Debug("File change: %s (type: %d)", path, change.Type)

		if !ctx.IsLogicSource(path) {
			continue
		}

		switch change.Type {
		case protocol.FileChangeTypeDeleted:
			ctx.ForgetSource(uri)
		case protocol.FileChangeTypeCreated, protocol.FileChangeTypeChanged:
			// Open buffers already track edits through didChange;
			// everything else re-reads from disk
			if ctx.Document(uri) == nil {
				ctx.SyncSourceFromDisk(uri)
			}
		}
	}

	return nil
}
