package lifecycle

import (
	"github.com/pwwpche/angular-template-lsp/internal/log"
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/template"
	"github.com/pwwpche/angular-template-lsp/lsp/types"
	"github.com/tliron/glsp"
)

// Shutdown handles the LSP shutdown request
func Shutdown(ctx types.ServerContext, context *glsp.Context) error {
	log.Info("Server shutting down")

	// Release the tree-sitter parser pools. Server.Close also does
	// this; both are safe to call.
	template.ClosePool()
	project.CloseParserPool()

	return nil
}
