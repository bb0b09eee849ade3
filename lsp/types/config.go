package types

// ServerConfig represents the server configuration sent by the client
// via workspace/didChangeConfiguration or initializationOptions
type ServerConfig struct {
	// Include is the set of glob patterns selecting logic sources to
	// scan for component and directive metadata, relative to the
	// workspace root
	Include []string `json:"include"`

	// Exclude removes matches from Include
	Exclude []string `json:"exclude"`
}

// DefaultConfig returns the default server configuration. The empty
// Include slice means the workspace-level config file (or tsconfig
// includes) decides what is scanned.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Include: []string{},
		Exclude: []string{},
	}
}
