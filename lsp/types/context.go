package types

import (
	"github.com/pwwpche/angular-template-lsp/internal/documents"
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/refs"
	"github.com/tliron/glsp"
)

// ServerContext provides all dependencies needed for LSP handlers.
// This unified context eliminates the need for handler-specific interfaces
// and enables dependency injection for testing.
type ServerContext interface {
	// Document operations
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager
	AllDocuments() []*documents.Document

	// DocumentText returns the current text of a document: the open
	// editor buffer when tracked, registered source text otherwise
	DocumentText(uri string) (string, bool)

	// Project operations
	Registry() *project.Registry
	References(uri string, offset int) []refs.Entry

	// Workspace operations
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Configuration
	GetConfig() ServerConfig
	SetConfig(config ServerConfig)
	IsLogicSource(path string) bool

	// Workspace initialization and source tracking
	LoadWorkspaceSources() error
	RegisterFileWatchers(ctx *glsp.Context) error
	SyncSource(uri string)
	SyncSourceFromDisk(uri string)
	ForgetSource(uri string)

	// LSP context (for client notifications)
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)
}
