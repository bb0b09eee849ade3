package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// defaultInclude is used when neither a config file nor a tsconfig
// provides source globs
var defaultInclude = []string{"src/**/*.ts", "src/**/*.js"}

// WorkspaceConfig controls which files are scanned as logic sources
// and templates
type WorkspaceConfig struct {
	// Include globs select logic sources, relative to the workspace root
	Include []string `yaml:"include"`
	// Exclude globs remove matches from Include
	Exclude []string `yaml:"exclude"`
}

// ConfigFileName is the optional server config at the workspace root
const ConfigFileName = "angular-template-lsp.yaml"

// LoadWorkspaceConfig assembles the workspace configuration: the yaml
// config file wins, then tsconfig/jsconfig include globs, then the
// built-in default. Missing files are not errors.
func LoadWorkspaceConfig(rootPath string) WorkspaceConfig {
	if cfg, ok := loadYAMLConfig(filepath.Join(rootPath, ConfigFileName)); ok {
		return cfg
	}
	for _, name := range []string{"tsconfig.json", "jsconfig.json"} {
		if include, ok := loadTSConfigIncludes(filepath.Join(rootPath, name)); ok {
			return WorkspaceConfig{Include: include}
		}
	}
	return WorkspaceConfig{Include: defaultInclude}
}

func loadYAMLConfig(path string) (WorkspaceConfig, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkspaceConfig{}, false
	}
	var cfg WorkspaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return WorkspaceConfig{}, false
	}
	if len(cfg.Include) == 0 {
		cfg.Include = defaultInclude
	}
	return cfg, true
}

// tsConfig is the subset of tsconfig.json the scanner cares about
type tsConfig struct {
	Include []string `json:"include"`
	Files   []string `json:"files"`
}

// loadTSConfigIncludes reads include/files globs from a tsconfig-style
// file; comments and trailing commas are tolerated (JSONC)
func loadTSConfigIncludes(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var cfg tsConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, false
	}
	include := append([]string{}, cfg.Include...)
	include = append(include, cfg.Files...)
	if len(include) == 0 {
		return nil, false
	}
	return include, true
}

// DiscoverSources resolves the config globs against the workspace root
// and returns matching file paths, sorted, excludes applied
func DiscoverSources(rootPath string, cfg WorkspaceConfig) []string {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range cfg.Include {
		matches, err := doublestar.FilepathGlob(filepath.Join(rootPath, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if !isSourcePath(m) || seen[m] {
				continue
			}
			if excluded(rootPath, m, cfg.Exclude) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

func isSourcePath(p string) bool {
	switch filepath.Ext(p) {
	case ".ts", ".js", ".mjs", ".tsx", ".jsx":
		return !strings.HasSuffix(p, ".d.ts")
	}
	return false
}

func excluded(rootPath, p string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, err := doublestar.PathMatch(filepath.Join(rootPath, pattern), p); err == nil && ok {
			return true
		}
	}
	return false
}
