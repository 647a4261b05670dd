package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// initTimeout bounds server startup and the initialize handshake.
	initTimeout = 20 * time.Second

	// callTimeout bounds each tool call so a wedged server cannot hang
	// the session.
	callTimeout = 20 * time.Second
)

// clientVersion identifies this client in the MCP handshake.
const clientVersion = "0.1.0"

// MultiClient manages stdio connections to every configured MCP server.
// Servers that fail to start are skipped, not fatal; the workflow runs with
// whatever tools the surviving servers expose.
type MultiClient struct {
	servers map[string]ServerConfig
	log     io.Writer

	// transport builds the wire to a server; tests swap it for in-process
	// transports.
	transport func(cfg ServerConfig) mcpsdk.Transport

	mu       sync.RWMutex
	sessions map[string]*mcpsdk.ClientSession
	tools    map[string][]*mcpsdk.Tool
}

// NewMultiClient creates a client over the given server definitions.
// log receives connection progress; nil discards it.
func NewMultiClient(servers map[string]ServerConfig, log io.Writer) *MultiClient {
	if log == nil {
		log = io.Discard
	}
	return &MultiClient{
		servers:   servers,
		log:       log,
		transport: commandTransport,
		sessions:  make(map[string]*mcpsdk.ClientSession),
		tools:     make(map[string][]*mcpsdk.Tool),
	}
}

// commandTransport spawns the server command and speaks MCP over its stdio.
func commandTransport(cfg ServerConfig) mcpsdk.Transport {
	command, args := resolveCommand(cfg)

	cmd := exec.Command(command, args...)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return mcpsdk.NewCommandTransport(cmd)
}

// Start connects to all configured servers. Individual failures are logged
// and skipped; an error is returned only when servers were configured and
// none connected.
func (m *MultiClient) Start(ctx context.Context) error {
	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.connect(ctx, name, m.servers[name]); err != nil {
			fmt.Fprintf(m.log, "server %s failed to start: %v\n", name, err)
			continue
		}
		m.mu.RLock()
		count := len(m.tools[name])
		m.mu.RUnlock()
		fmt.Fprintf(m.log, "server %s connected, tools: %d\n", name, count)
	}

	if len(m.servers) > 0 && len(m.Connected()) == 0 {
		return fmt.Errorf("no MCP server could be started")
	}
	return nil
}

func (m *MultiClient) connect(ctx context.Context, name string, cfg ServerConfig) error {
	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "clarion", Version: clientVersion}, nil)
	session, err := client.Connect(initCtx, m.transport(cfg))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	listed, err := session.ListTools(initCtx, &mcpsdk.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return fmt.Errorf("list tools: %w", err)
	}

	m.mu.Lock()
	m.sessions[name] = session
	m.tools[name] = listed.Tools
	m.mu.Unlock()
	return nil
}

// Stop closes all server sessions.
func (m *MultiClient) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, session := range m.sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
		delete(m.sessions, name)
		delete(m.tools, name)
	}
	return firstErr
}

// Connected returns the names of successfully connected servers, sorted.
func (m *MultiClient) Connected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllTools returns every tool from every connected server.
func (m *MultiClient) AllTools() []*mcpsdk.Tool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tools))
	for name := range m.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []*mcpsdk.Tool
	for _, name := range names {
		all = append(all, m.tools[name]...)
	}
	return all
}

// ToolsFromServers returns the tools of the requested servers, flattened.
// Unknown server names are skipped.
func (m *MultiClient) ToolsFromServers(names []string) []*mcpsdk.Tool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*mcpsdk.Tool
	for _, name := range names {
		all = append(all, m.tools[name]...)
	}
	return all
}

// CallTool invokes a tool on a specific server with the call timeout applied.
func (m *MultiClient) CallTool(ctx context.Context, server, tool string, arguments map[string]any) (*mcpsdk.CallToolResult, error) {
	m.mu.RLock()
	session, ok := m.sessions[server]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("server %q not connected", server)
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	result, err := session.CallTool(callCtx, &mcpsdk.CallToolParams{
		Name:      tool,
		Arguments: arguments,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("tool %q on server %q timed out after %s", tool, server, callTimeout)
		}
		return nil, fmt.Errorf("call %s on %s: %w", tool, server, err)
	}
	return result, nil
}

// RouteToolCall finds the server exposing the tool and invokes it there.
func (m *MultiClient) RouteToolCall(ctx context.Context, tool string, arguments map[string]any) (*mcpsdk.CallToolResult, error) {
	server, _, ok := m.findTool(tool)
	if !ok {
		return nil, fmt.Errorf("tool %q not found on any server", tool)
	}
	return m.CallTool(ctx, server, tool, arguments)
}

// CallByPosition invokes a tool with positional arguments mapped onto its
// input schema, and returns the first text block of the result. Agents that
// produce call-style invocations without argument names go through here.
func (m *MultiClient) CallByPosition(ctx context.Context, tool string, args ...any) (string, error) {
	_, def, ok := m.findTool(tool)
	if !ok {
		return "", fmt.Errorf("tool %q not found on any server", tool)
	}

	keys := positionalKeys(def.InputSchema)
	arguments := make(map[string]any)
	for i, arg := range args {
		if i >= len(keys) {
			break
		}
		arguments[keys[i]] = arg
	}

	result, err := m.RouteToolCall(ctx, tool, arguments)
	if err != nil {
		return "", err
	}
	return firstText(result), nil
}

// findTool locates a tool by name across all servers.
func (m *MultiClient) findTool(tool string) (string, *mcpsdk.Tool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tools))
	for name := range m.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, t := range m.tools[name] {
			if t.Name == tool {
				return name, t, true
			}
		}
	}
	return "", nil, false
}

// positionalKeys orders a schema's parameters for positional mapping:
// required parameters in declaration order, then the rest alphabetically.
func positionalKeys(schema *jsonschema.Schema) []string {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}

	keys := make([]string, 0, len(schema.Properties))
	seen := make(map[string]bool)
	for _, key := range schema.Required {
		if _, ok := schema.Properties[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// firstText returns the first text content block of a result, or its
// stringified form when no text block exists.
func firstText(result *mcpsdk.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok {
			return text.Text
		}
	}
	return fmt.Sprintf("%v", result.Content)
}
