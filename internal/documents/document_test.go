package documents_test

import (
	"testing"

	"github.com/pwwpche/angular-template-lsp/internal/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	t.Run("creates document with correct fields", func(t *testing.T) {
		doc := documents.NewDocument("file:///app.component.html", "html", 1, "<div></div>")

		assert.Equal(t, "file:///app.component.html", doc.URI())
		assert.Equal(t, "html", doc.LanguageID())
		assert.Equal(t, 1, doc.Version())
		assert.Equal(t, "<div></div>", doc.Content())
	})

	t.Run("handles empty content", func(t *testing.T) {
		doc := documents.NewDocument("file:///empty.html", "html", 0, "")

		assert.Equal(t, "", doc.Content())
		assert.Equal(t, 0, doc.Version())
	})
}

func TestDocument_SetContent(t *testing.T) {
	t.Run("accepts newer version", func(t *testing.T) {
		doc := documents.NewDocument("file:///app.ts", "typescript", 1, "original")

		err := doc.SetContent("updated", 2)
		require.NoError(t, err)
		assert.Equal(t, "updated", doc.Content())
		assert.Equal(t, 2, doc.Version())
	})

	t.Run("accepts same version", func(t *testing.T) {
		doc := documents.NewDocument("file:///app.ts", "typescript", 1, "original")

		err := doc.SetContent("updated", 1)
		require.NoError(t, err)
		assert.Equal(t, "updated", doc.Content())
		assert.Equal(t, 1, doc.Version())
	})

	t.Run("rejects stale update", func(t *testing.T) {
		doc := documents.NewDocument("file:///app.ts", "typescript", 5, "original")

		err := doc.SetContent("stale update", 3)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "stale")
		// Content should remain unchanged
		assert.Equal(t, "original", doc.Content())
		assert.Equal(t, 5, doc.Version())
	})

	t.Run("error message includes version numbers", func(t *testing.T) {
		doc := documents.NewDocument("file:///app.ts", "typescript", 10, "original")

		err := doc.SetContent("stale", 5)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "10")
		assert.Contains(t, err.Error(), "5")
	})
}

func TestDocument_Getters(t *testing.T) {
	doc := documents.NewDocument("file:///src/app/hero.component.ts", "typescript", 42, "export class HeroComponent {}")

	t.Run("URI returns correct value", func(t *testing.T) {
		assert.Equal(t, "file:///src/app/hero.component.ts", doc.URI())
	})

	t.Run("LanguageID returns correct value", func(t *testing.T) {
		assert.Equal(t, "typescript", doc.LanguageID())
	})

	t.Run("Version returns correct value", func(t *testing.T) {
		assert.Equal(t, 42, doc.Version())
	})

	t.Run("Content returns correct value", func(t *testing.T) {
		assert.Equal(t, "export class HeroComponent {}", doc.Content())
	})
}
