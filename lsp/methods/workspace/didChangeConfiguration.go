package workspace

import (
	"encoding/json"
	"fmt"

	"github.com/pwwpche/angular-template-lsp/internal/log"
	"github.com/pwwpche/angular-template-lsp/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeConfiguration handles the workspace/didChangeConfiguration notification
func DidChangeConfiguration(ctx types.ServerContext, context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	log.Info("Configuration changed")

	config, err := parseConfiguration(params.Settings)
	if err != nil {
		// Don't fail, just use defaults
		log.Warn("Failed to parse configuration: %v", err)
		return nil
	}

	ctx.SetConfig(config)
	log.Info("New configuration: %+v", config)

	// New include patterns may pull different sources into scope
	if err := ctx.LoadWorkspaceSources(); err != nil {
		log.Warn("Failed to reload workspace sources: %v", err)
	}

	return nil
}

// parseConfiguration parses the configuration from the settings
func parseConfiguration(settings any) (types.ServerConfig, error) {
	config := types.DefaultConfig()

	if settings == nil {
		return config, nil
	}

	// Settings come as a nested object: { "angularTemplateLsp": { ... } }
	settingsMap, ok := settings.(map[string]any)
	if !ok {
		return config, fmt.Errorf("settings is not a map")
	}

	var ourSettings any
	if val, exists := settingsMap["angularTemplateLsp"]; exists {
		ourSettings = val
	} else if val, exists := settingsMap["angular-template-lsp"]; exists {
		ourSettings = val
	} else {
		// No configuration provided, use defaults
		return config, nil
	}

	// Convert to JSON and back to parse into struct
	jsonBytes, err := json.Marshal(ourSettings)
	if err != nil {
		return config, fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, &config); err != nil {
		return config, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return config, nil
}
