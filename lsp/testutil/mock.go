package testutil

import (
	"path/filepath"
	"strings"

	"github.com/pwwpche/angular-template-lsp/internal/documents"
	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/refs"
	"github.com/pwwpche/angular-template-lsp/internal/shim"
	"github.com/pwwpche/angular-template-lsp/lsp/types"
	"github.com/tliron/glsp"
)

// MockServerContext implements types.ServerContext for testing. The
// project registry, checker, and reference engine are real; only the
// filesystem and client connection are simulated.
type MockServerContext struct {
	docs        *documents.Manager
	registry    *project.Registry
	checker     *shim.Checker
	builder     *refs.Builder
	rootURI     string
	rootPath    string
	config      types.ServerConfig
	glspContext *glsp.Context

	// Files simulates on-disk content by path for SyncSourceFromDisk
	// and DocumentText fallbacks
	Files map[string]string

	// Optional callbacks for custom behavior in tests
	LoadSourcesFunc      func() error
	RegisterWatchersFunc func(*glsp.Context) error

	// Tracking flags for tests that need to verify methods were called
	LoadSourcesCalled      bool
	RegisterWatchersCalled bool
}

// NewMockServerContext creates a new mock server context
func NewMockServerContext() *MockServerContext {
	m := &MockServerContext{
		docs:     documents.NewManager(),
		registry: project.NewRegistry(),
		config:   types.DefaultConfig(),
		Files:    map[string]string{},
	}
	m.checker = shim.NewChecker(m.registry, m)
	m.builder = refs.NewBuilder(m.checker)
	return m
}

// Document returns the document with the given URI
func (m *MockServerContext) Document(uri string) *documents.Document {
	return m.docs.Get(uri)
}

// DocumentManager returns the document manager
func (m *MockServerContext) DocumentManager() *documents.Manager {
	return m.docs
}

// AllDocuments returns all tracked documents
func (m *MockServerContext) AllDocuments() []*documents.Document {
	return m.docs.GetAll()
}

// DocumentText returns the current text of a document
func (m *MockServerContext) DocumentText(uri string) (string, bool) {
	if doc := m.docs.Get(uri); doc != nil {
		return doc.Content(), true
	}
	if text, ok := m.registry.SourceText(uri); ok {
		return text, true
	}
	text, ok := m.Files[uriPath(uri)]
	return text, ok
}

// Registry returns the project source registry
func (m *MockServerContext) Registry() *project.Registry {
	return m.registry
}

// References resolves all references to the entity at a byte offset
func (m *MockServerContext) References(uri string, offset int) []refs.Entry {
	return m.builder.Get(uri, offset)
}

// RootURI returns the workspace root URI
func (m *MockServerContext) RootURI() string {
	return m.rootURI
}

// RootPath returns the workspace root path
func (m *MockServerContext) RootPath() string {
	return m.rootPath
}

// SetRootURI sets the workspace root URI
func (m *MockServerContext) SetRootURI(uri string) {
	m.rootURI = uri
}

// SetRootPath sets the workspace root path
func (m *MockServerContext) SetRootPath(path string) {
	m.rootPath = path
}

// GetConfig returns the server configuration
func (m *MockServerContext) GetConfig() types.ServerConfig {
	return m.config
}

// SetConfig sets the server configuration
func (m *MockServerContext) SetConfig(config types.ServerConfig) {
	m.config = config
}

// IsLogicSource checks whether a file path is a scannable logic source
func (m *MockServerContext) IsLogicSource(path string) bool {
	if strings.HasSuffix(path, shim.ShimSuffix) || strings.HasSuffix(path, ".d.ts") {
		return false
	}
	ext := filepath.Ext(path)
	return ext == ".ts" || ext == ".js"
}

// LoadWorkspaceSources scans Files entries that look like logic sources
func (m *MockServerContext) LoadWorkspaceSources() error {
	m.LoadSourcesCalled = true
	if m.LoadSourcesFunc != nil {
		return m.LoadSourcesFunc()
	}
	for path, text := range m.Files {
		if m.IsLogicSource(path) {
			m.registry.RegisterSource("file://"+path, text)
		}
	}
	return nil
}

// RegisterFileWatchers records the registration request
func (m *MockServerContext) RegisterFileWatchers(ctx *glsp.Context) error {
	m.RegisterWatchersCalled = true
	if m.RegisterWatchersFunc != nil {
		return m.RegisterWatchersFunc(ctx)
	}
	return nil
}

// SyncSource re-scans a document into the registry
func (m *MockServerContext) SyncSource(uri string) {
	if !m.IsLogicSource(uriPath(uri)) {
		return
	}
	if doc := m.docs.Get(uri); doc != nil {
		m.registry.RegisterSource(uri, doc.Content())
		return
	}
	m.SyncSourceFromDisk(uri)
}

// SyncSourceFromDisk re-scans a source from the simulated filesystem
func (m *MockServerContext) SyncSourceFromDisk(uri string) {
	if text, ok := m.Files[uriPath(uri)]; ok {
		m.registry.RegisterSource(uri, text)
	}
}

// ForgetSource drops a source from the registry
func (m *MockServerContext) ForgetSource(uri string) {
	m.registry.RemoveSource(uri)
}

// GLSPContext returns the GLSP context
func (m *MockServerContext) GLSPContext() *glsp.Context {
	return m.glspContext
}

// SetGLSPContext sets the GLSP context
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) {
	m.glspContext = ctx
}

func uriPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// Verify the mock satisfies the interface
var _ types.ServerContext = (*MockServerContext)(nil)
