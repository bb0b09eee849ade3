package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadWorkspaceConfigDefaults(t *testing.T) {
	cfg := LoadWorkspaceConfig(t.TempDir())
	assert.Equal(t, []string{"src/**/*.ts", "src/**/*.js"}, cfg.Include)
	assert.Empty(t, cfg.Exclude)
}

func TestLoadWorkspaceConfigYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFileName, "include:\n  - app/**/*.ts\nexclude:\n  - app/**/*.spec.ts\n")
	// tsconfig present but the yaml config wins
	writeFile(t, root, "tsconfig.json", `{"include": ["lib/**/*.ts"]}`)

	cfg := LoadWorkspaceConfig(root)
	assert.Equal(t, []string{"app/**/*.ts"}, cfg.Include)
	assert.Equal(t, []string{"app/**/*.spec.ts"}, cfg.Exclude)
}

func TestLoadWorkspaceConfigYAMLWithoutInclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFileName, "exclude:\n  - dist/**\n")

	cfg := LoadWorkspaceConfig(root)
	assert.Equal(t, []string{"src/**/*.ts", "src/**/*.js"}, cfg.Include)
	assert.Equal(t, []string{"dist/**"}, cfg.Exclude)
}

func TestLoadWorkspaceConfigTSConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tsconfig.json", `{
  // comments and trailing commas are fine
  "include": ["app/**/*.ts",],
  "files": ["main.ts"],
}`)

	cfg := LoadWorkspaceConfig(root)
	assert.Equal(t, []string{"app/**/*.ts", "main.ts"}, cfg.Include)
}

func TestLoadWorkspaceConfigEmptyTSConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tsconfig.json", `{"compilerOptions": {}}`)

	cfg := LoadWorkspaceConfig(root)
	assert.Equal(t, defaultInclude, cfg.Include)
}

func TestDiscoverSources(t *testing.T) {
	root := t.TempDir()
	b := writeFile(t, root, "src/b.ts", "export class B {}")
	a := writeFile(t, root, "src/nested/a.js", "export class A {}")
	writeFile(t, root, "src/types.d.ts", "declare const x: number;")
	writeFile(t, root, "src/hero.html", "<div></div>")
	writeFile(t, root, "other/c.ts", "export class C {}")

	got := DiscoverSources(root, WorkspaceConfig{Include: []string{"src/**/*.ts", "src/**/*.js"}})
	assert.Equal(t, []string{b, a}, got, "sorted, declarations and non-sources skipped")
}

func TestDiscoverSourcesExcludes(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "src/hero.ts", "export class Hero {}")
	writeFile(t, root, "src/hero.spec.ts", "describe()")

	got := DiscoverSources(root, WorkspaceConfig{
		Include: []string{"src/**/*.ts"},
		Exclude: []string{"**/*.spec.ts"},
	})
	assert.Equal(t, []string{keep}, got)
}

func TestDiscoverSourcesDeduplicates(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "src/hero.ts", "export class Hero {}")

	got := DiscoverSources(root, WorkspaceConfig{
		Include: []string{"src/**/*.ts", "src/*.ts"},
	})
	assert.Equal(t, []string{hero}, got)
}
