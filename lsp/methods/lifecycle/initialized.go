package lifecycle

import (
	"github.com/pwwpche/angular-template-lsp/internal/log"
	"github.com/pwwpche/angular-template-lsp/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized handles the LSP initialized notification
func Initialized(ctx types.ServerContext, context *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("Server initialized")

	// Store context for later client notifications
	ctx.SetGLSPContext(context)

	// Scan workspace logic sources for components and directives
	if err := ctx.LoadWorkspaceSources(); err != nil {
		// Don't fail initialization, just log the error
		log.Warn("Failed to load workspace sources: %v", err)
	}

	// Register file watchers for logic sources
	if err := ctx.RegisterFileWatchers(context); err != nil {
		log.Warn("Failed to register file watchers: %v", err)
	}

	return nil
}
