package mcp

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestPositionalKeys_RequiredFirst(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":   {Type: "string"},
			"limit":   {Type: "integer"},
			"offset":  {Type: "integer"},
			"verbose": {Type: "boolean"},
		},
		Required: []string{"query", "limit"},
	}

	got := positionalKeys(schema)
	want := []string{"query", "limit", "offset", "verbose"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("positionalKeys = %v, want %v", got, want)
	}
}

func TestPositionalKeys_NoSchema(t *testing.T) {
	if keys := positionalKeys(nil); keys != nil {
		t.Errorf("positionalKeys(nil) = %v, want nil", keys)
	}
	if keys := positionalKeys(&jsonschema.Schema{Type: "object"}); keys != nil {
		t.Errorf("positionalKeys(empty) = %v, want nil", keys)
	}
}

func TestPositionalKeys_RequiredNotInProperties(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"a": {Type: "string"},
		},
		Required: []string{"ghost", "a"},
	}

	got := positionalKeys(schema)
	want := []string{"a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("positionalKeys = %v, want %v", got, want)
	}
}

func TestFirstText(t *testing.T) {
	result := &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: "hello"},
			&mcpsdk.TextContent{Text: "ignored"},
		},
	}
	if got := firstText(result); got != "hello" {
		t.Errorf("firstText = %q, want hello", got)
	}
	if got := firstText(nil); got != "" {
		t.Errorf("firstText(nil) = %q, want empty", got)
	}
}

func TestResolveCommand_Defaults(t *testing.T) {
	command, args := resolveCommand(ServerConfig{Command: "npx", Args: []string{"-y", "server"}})
	if command != "npx" || len(args) != 2 {
		t.Errorf("resolveCommand = %q %v", command, args)
	}
}

type echoArgs struct {
	Text string `json:"text"`
}

// newEchoServer runs an in-process MCP server exposing a single echo tool.
func newEchoServer(t *testing.T) mcpsdk.Transport {
	t.Helper()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "echo", Version: "test"}, nil)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "echo",
		Description: "Returns its input text.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[echoArgs]) (*mcpsdk.CallToolResultFor[any], error) {
		return &mcpsdk.CallToolResultFor[any]{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: params.Arguments.Text}},
		}, nil
	})

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	go func() { _ = server.Run(t.Context(), serverTransport) }()
	return clientTransport
}

func TestStart_SkipsFailingServer(t *testing.T) {
	echoTransport := newEchoServer(t)

	client := NewMultiClient(map[string]ServerConfig{
		"broken": {Command: "/does/not/exist/mcp-server"},
		"echo":   {Command: "in-process"},
	}, io.Discard)
	client.transport = func(cfg ServerConfig) mcpsdk.Transport {
		if cfg.Command == "in-process" {
			return echoTransport
		}
		return commandTransport(cfg)
	}

	if err := client.Start(t.Context()); err != nil {
		t.Fatalf("one healthy server must be enough to start: %v", err)
	}
	defer func() { _ = client.Stop() }()

	if got := client.Connected(); !reflect.DeepEqual(got, []string{"echo"}) {
		t.Fatalf("Connected = %v, want [echo]", got)
	}

	text, err := client.CallByPosition(t.Context(), "echo", "hello")
	if err != nil {
		t.Fatalf("CallByPosition: %v", err)
	}
	if text != "hello" {
		t.Errorf("echo returned %q, want hello", text)
	}
}

func TestStart_ErrorsWhenNoServerStarts(t *testing.T) {
	client := NewMultiClient(map[string]ServerConfig{
		"broken": {Command: "/does/not/exist/mcp-server"},
	}, io.Discard)

	if err := client.Start(t.Context()); err == nil {
		t.Error("expected error when no configured server could be started")
	}
	if got := client.Connected(); len(got) != 0 {
		t.Errorf("Connected = %v, want none", got)
	}
}

func TestMultiClient_NotConnected(t *testing.T) {
	client := NewMultiClient(nil, nil)

	if _, err := client.CallTool(t.Context(), "browser", "open", nil); err == nil {
		t.Error("expected error for unconnected server")
	}
	if _, err := client.RouteToolCall(t.Context(), "open", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
	if tools := client.AllTools(); len(tools) != 0 {
		t.Errorf("tools = %v, want none", tools)
	}
}
