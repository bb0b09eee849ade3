package shim

// FindReferences is the host reference search: it expands the
// identifier at (uri, offset) and returns its word-boundary
// occurrences across all logic sources and shim files. File order is
// deterministic: sorted source URIs first, then shims in component
// order. Returns nil when the position does not name an identifier.
func (c *Checker) FindReferences(uri string, offset int) []RawRef {
	text, ok := c.textOf(uri)
	if !ok {
		return nil
	}
	name := identAt(text, offset)
	if name == "" {
		return nil
	}

	c.mu.Lock()
	seed := c.byShim[uri]
	records := c.records
	c.mu.Unlock()

	// A generated shim local is scoped to its own file: searches seeded
	// on one stay inside that shim, and searches seeded anywhere else
	// skip it
	if seed != nil && seed.File.Local(name) {
		var out []RawRef
		for _, span := range wordOccurrences(seed.File.Text, name) {
			out = append(out, RawRef{URI: seed.File.URI, Span: span})
		}
		return out
	}

	var out []RawRef
	for _, sourceURI := range c.registry.SourceURIs() {
		sourceText, ok := c.registry.SourceText(sourceURI)
		if !ok {
			continue
		}
		for _, span := range wordOccurrences(sourceText, name) {
			out = append(out, RawRef{URI: sourceURI, Span: span})
		}
	}
	for _, rec := range records {
		if rec.File.Local(name) {
			continue
		}
		for _, span := range wordOccurrences(rec.File.Text, name) {
			out = append(out, RawRef{URI: rec.File.URI, Span: span})
		}
	}
	return out
}
