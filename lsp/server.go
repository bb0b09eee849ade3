package lsp

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pwwpche/angular-template-lsp/internal/documents"
	"github.com/pwwpche/angular-template-lsp/internal/log"
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/refs"
	"github.com/pwwpche/angular-template-lsp/internal/shim"
	"github.com/pwwpche/angular-template-lsp/internal/template"
	"github.com/pwwpche/angular-template-lsp/internal/uriutil"
	"github.com/pwwpche/angular-template-lsp/lsp/methods/lifecycle"
	"github.com/pwwpche/angular-template-lsp/lsp/methods/textDocument"
	"github.com/pwwpche/angular-template-lsp/lsp/methods/textDocument/references"
	"github.com/pwwpche/angular-template-lsp/lsp/methods/workspace"
	"github.com/pwwpche/angular-template-lsp/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

// Verify that Server implements ServerContext interface
var _ types.ServerContext = (*Server)(nil)

// Server represents the Angular Template Language Server
type Server struct {
	documents  *documents.Manager
	registry   *project.Registry
	checker    *shim.Checker
	builder    *refs.Builder
	glspServer *server.Server
	context    *glsp.Context
	rootURI    string
	rootPath   string
	config     types.ServerConfig
	configMu   sync.RWMutex // Protects config, context, rootURI, and rootPath from concurrent access
}

// NewServer creates a new Angular Template LSP server
func NewServer() (*Server, error) {
	s := &Server{
		documents: documents.NewManager(),
		registry:  project.NewRegistry(),
		config:    types.DefaultConfig(),
	}
	s.checker = shim.NewChecker(s.registry, s)
	s.builder = refs.NewBuilder(s.checker)

	// Create the GLSP server with our handlers wrapped with middleware
	protocolHandler := protocol.Handler{
		Initialize:                      method(s, "initialize", lifecycle.Initialize),
		Initialized:                     notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                        noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                        notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeConfiguration: notify(s, "workspace/didChangeConfiguration", workspace.DidChangeConfiguration),
		WorkspaceDidChangeWatchedFiles:  notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:             notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:           notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:            notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentReferences:          method(s, "textDocument/references", references.References),
	}

	s.glspServer = server.NewServer(&protocolHandler, "angular-template-lsp", true)

	return s, nil
}

// RunStdio starts the LSP server using stdio transport
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Close releases server resources including the tree-sitter parser
// pools. It is safe to call Close multiple times.
func (s *Server) Close() error {
	template.ClosePool()
	project.CloseParserPool()
	return nil
}

// ServerContext interface implementation

// Document returns the document with the given URI
func (s *Server) Document(uri string) *documents.Document {
	return s.documents.Get(uri)
}

// DocumentManager returns the document manager
func (s *Server) DocumentManager() *documents.Manager {
	return s.documents
}

// AllDocuments returns all tracked documents
func (s *Server) AllDocuments() []*documents.Document {
	return s.documents.GetAll()
}

// DocumentText returns the current text of a document. Open editor
// buffers win; registered sources and on-disk files are fallbacks so
// that unopened templates still resolve.
func (s *Server) DocumentText(uri string) (string, bool) {
	if doc := s.documents.Get(uri); doc != nil {
		return doc.Content(), true
	}
	if text, ok := s.registry.SourceText(uri); ok {
		return text, true
	}
	data, err := os.ReadFile(uriutil.URIToPath(uri))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Registry returns the project source registry
func (s *Server) Registry() *project.Registry {
	return s.registry
}

// References resolves all references to the entity at a byte offset
func (s *Server) References(uri string, offset int) []refs.Entry {
	return s.builder.Get(uri, offset)
}

// RootURI returns the workspace root URI
func (s *Server) RootURI() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootURI
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootPath
}

// SetRootURI sets the workspace root URI
func (s *Server) SetRootURI(uri string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootURI = uri
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootPath = path
}

// GetConfig returns a snapshot of the server configuration
func (s *Server) GetConfig() types.ServerConfig {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// SetConfig sets the server configuration
func (s *Server) SetConfig(config types.ServerConfig) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config = config
}

// GLSPContext returns the GLSP context.
// Access is protected by configMu to prevent concurrent races.
func (s *Server) GLSPContext() *glsp.Context {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.context
}

// SetGLSPContext sets the GLSP context.
// Access is protected by configMu to prevent concurrent races.
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.context = ctx
}

// IsLogicSource checks whether a file path is a logic source the
// server scans for component and directive metadata. Declaration
// files and generated shims are never logic sources.
func (s *Server) IsLogicSource(path string) bool {
	if strings.HasSuffix(path, shim.ShimSuffix) {
		return false
	}
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	ext := filepath.Ext(path)
	return ext == ".ts" || ext == ".js"
}

// SyncSource re-scans a document into the registry, preferring the
// open editor buffer over disk content
func (s *Server) SyncSource(uri string) {
	path := uriutil.URIToPath(uri)
	if !s.IsLogicSource(path) {
		return
	}
	if doc := s.documents.Get(uri); doc != nil {
		s.registry.RegisterSource(uri, doc.Content())
		return
	}
	s.SyncSourceFromDisk(uri)
}

// SyncSourceFromDisk re-scans a source file from disk, used for
// watched-file events on files not open in the editor
func (s *Server) SyncSourceFromDisk(uri string) {
	path := uriutil.URIToPath(uri)
	if !s.IsLogicSource(path) {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read source %s: %v", path, err)
		return
	}
	s.registry.RegisterSource(uri, string(data))
}

// ForgetSource drops a deleted source from the registry
func (s *Server) ForgetSource(uri string) {
	s.registry.RemoveSource(uri)
}

// LoadWorkspaceSources discovers and scans the workspace's logic
// sources. The client configuration overrides the workspace config
// file when it names include patterns.
func (s *Server) LoadWorkspaceSources() error {
	rootPath := s.RootPath()
	if rootPath == "" {
		log.Info("No workspace root; skipping source discovery")
		return nil
	}

	wsCfg := project.LoadWorkspaceConfig(rootPath)
	cfg := s.GetConfig()
	if len(cfg.Include) > 0 {
		wsCfg.Include = cfg.Include
	}
	if len(cfg.Exclude) > 0 {
		wsCfg.Exclude = cfg.Exclude
	}

	paths := project.DiscoverSources(rootPath, wsCfg)
	loaded := 0
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			log.Warn("Failed to read source %s: %v", p, err)
			continue
		}
		s.registry.RegisterSource(uriutil.PathToURI(p), string(data))
		loaded++
	}

	log.Info("Loaded %d workspace sources (%d components, %d directives, %d pipes)",
		loaded, len(s.registry.Components()), len(s.registry.Directives()), len(s.registry.Pipes()))
	return nil
}

// RegisterFileWatchers registers file watchers for the workspace's
// logic sources with the client
func (s *Server) RegisterFileWatchers(context *glsp.Context) error {
	// Guard against nil or empty context (can happen in tests without real LSP connection)
	if context == nil || context.Call == nil {
		log.Info("Skipping file watcher registration (no client context)")
		return nil
	}

	rootPath := s.RootPath()
	wsCfg := project.LoadWorkspaceConfig(rootPath)
	cfg := s.GetConfig()
	if len(cfg.Include) > 0 {
		wsCfg.Include = cfg.Include
	}

	watchers := []protocol.FileSystemWatcher{}
	for _, pattern := range wsCfg.Include {
		if rootPath != "" && !filepath.IsAbs(pattern) {
			pattern = filepath.ToSlash(filepath.Join(rootPath, pattern))
		}
		watchers = append(watchers, protocol.FileSystemWatcher{
			GlobPattern: pattern,
		})
	}

	if len(watchers) == 0 {
		log.Info("No file watchers to register")
		return nil
	}

	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:     "angular-template-source-watcher",
				Method: "workspace/didChangeWatchedFiles",
				RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
					Watchers: watchers,
				},
			},
		},
	}

	// client/registerCapability is a request, not a notification, and
	// must run off the handler loop: a synchronous Call would block
	// the loop that reads the client's response.
	go func(ctx *glsp.Context) {
		var result any
		ctx.Call("client/registerCapability", params, &result)
		log.Info("File watcher registration completed")
	}(context)

	log.Info("Sent file watcher registration request (%d watchers)", len(watchers))
	return nil
}
