package project

import (
	"sort"
	"sync"
)

// sourceInfo is everything scanned from one logic source
type sourceInfo struct {
	text       string
	components []*ComponentMeta
	directives []*DirectiveMeta
	pipes      []*PipeMeta
}

// Registry holds the scanned metadata of every known logic source.
// It is the workspace-wide view the type checker builds shims from.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*sourceInfo
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*sourceInfo)}
}

// RegisterSource scans a logic source and replaces any previous
// metadata recorded for its URI
func (r *Registry) RegisterSource(uri, content string) {
	comps, dirs, pipes := scanSource(uri, content)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[uri] = &sourceInfo{
		text:       content,
		components: comps,
		directives: dirs,
		pipes:      pipes,
	}
}

// RemoveSource forgets a logic source
func (r *Registry) RemoveSource(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, uri)
}

// HasSource reports whether a URI is a registered logic source
func (r *Registry) HasSource(uri string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[uri]
	return ok
}

// SourceText returns the registered text of a logic source
func (r *Registry) SourceText(uri string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.sources[uri]
	if !ok {
		return "", false
	}
	return info.text, true
}

// SourceURIs returns all registered source URIs in sorted order
func (r *Registry) SourceURIs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uris := make([]string, 0, len(r.sources))
	for uri := range r.sources {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Components returns every known component, ordered by source URI then
// declaration order
func (r *Registry) Components() []*ComponentMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*ComponentMeta
	for _, uri := range r.sortedURIsLocked() {
		out = append(out, r.sources[uri].components...)
	}
	return out
}

// Directives returns every known directive (components included),
// ordered by source URI then declaration order
func (r *Registry) Directives() []*DirectiveMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*DirectiveMeta
	for _, uri := range r.sortedURIsLocked() {
		out = append(out, r.sources[uri].directives...)
	}
	return out
}

// Pipes returns every known pipe, ordered by source URI then
// declaration order
func (r *Registry) Pipes() []*PipeMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*PipeMeta
	for _, uri := range r.sortedURIsLocked() {
		out = append(out, r.sources[uri].pipes...)
	}
	return out
}

// Pipe returns the pipe with the given template-facing name
func (r *Registry) Pipe(name string) (*PipeMeta, bool) {
	for _, p := range r.Pipes() {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ComponentForTemplate returns the component owning an external
// template document
func (r *Registry) ComponentForTemplate(templateURI string) (*ComponentMeta, bool) {
	for _, c := range r.Components() {
		if c.TemplateURI == templateURI {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) sortedURIsLocked() []string {
	uris := make([]string, 0, len(r.sources))
	for uri := range r.sources {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
