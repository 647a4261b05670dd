/*
Package mcp connects to the external tool servers of the workflow over the
Model Context Protocol. A single MultiClient fans out to every configured
server, aggregates their tools, and routes calls to whichever server owns
the requested tool.
*/
package mcp

import (
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/spf13/afero"
)

// DefaultConfigPath is where server definitions are looked up by default.
const DefaultConfigPath = "mcp_config.json"

// ServerConfig describes how to launch one stdio MCP server.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// configFile is the on-disk layout of mcp_config.json.
type configFile struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// DefaultServers returns the built-in server set used when no config file
// exists.
func DefaultServers() map[string]ServerConfig {
	return map[string]ServerConfig{
		"browser": {Command: "uv", Args: []string{"run", "mcp_servers/server_browser.py"}},
		"rag":     {Command: "uv", Args: []string{"run", "mcp_servers/server_rag.py"}},
		"sandbox": {Command: "uv", Args: []string{"run", "mcp_servers/server_sandbox.py"}},
	}
}

// LoadConfig reads server definitions from the given path. A missing file
// falls back to DefaultServers; a malformed file is an error.
func LoadConfig(fs afero.Fs, path string) (map[string]ServerConfig, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return DefaultServers(), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file configFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if file.MCPServers == nil {
		file.MCPServers = map[string]ServerConfig{}
	}
	return file.MCPServers, nil
}

// resolveCommand returns the command and args to launch, substituting the
// system Python when uv is configured but not installed.
func resolveCommand(cfg ServerConfig) (string, []string) {
	command := cfg.Command
	if command == "" {
		command = "uv"
	}
	args := cfg.Args

	if command == "uv" {
		if _, err := exec.LookPath("uv"); err != nil {
			command = "python3"
			if len(args) > 0 && args[0] == "run" {
				args = args[1:]
			}
		}
	}
	return command, args
}
