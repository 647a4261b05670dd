package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"clarion/internal/globals"
)

// GetGlobalConfigDir returns the path to the global configuration directory
// (~/.clarion). It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".clarion"), nil
}

// GetGlobalsBasePath returns the directory holding the answer store.
// Resolution order (first match wins):
// 1. Explicit config via "store.path" (Viper/env/flag)
// 2. Local project directory: .clarion/globals (if it exists)
// 3. XDG_DATA_HOME/clarion/globals (if XDG_DATA_HOME is set)
// 4. Global fallback: ~/.clarion/globals
func GetGlobalsBasePath() string {
	if path := viper.GetString("store.path"); path != "" {
		return path
	}

	localGlobals := ".clarion/globals"
	if info, err := os.Stat(localGlobals); err == nil && info.IsDir() {
		return localGlobals
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "clarion", "globals")
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "./globals"
	}
	return filepath.Join(dir, "globals")
}

// GetTemplatesDir returns the prompt templates directory, empty when none is
// configured.
func GetTemplatesDir() string {
	return viper.GetString("prompts.templatesDir")
}

// GetMCPConfigPath returns the path to the MCP server definitions file.
func GetMCPConfigPath() string {
	if path := viper.GetString("mcp.config"); path != "" {
		return path
	}
	return "mcp_config.json"
}

// GetSimilarityThreshold returns the cosine similarity threshold for re-ask
// detection.
func GetSimilarityThreshold() float64 {
	if viper.IsSet("store.similarityThreshold") {
		return viper.GetFloat64("store.similarityThreshold")
	}
	return globals.DefaultSimilarityThreshold
}

// GetMaxRounds returns the per-session clarification round budget.
func GetMaxRounds() int {
	if viper.IsSet("session.maxRounds") {
		return viper.GetInt("session.maxRounds")
	}
	return 0
}
