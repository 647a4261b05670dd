package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"clarion/internal/config"
	"clarion/internal/mcp"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Work with the configured MCP tool servers",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "Start all configured servers and list their tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := startServers(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = client.Stop() }()

		out := cmd.OutOrStdout()
		for _, name := range client.Connected() {
			fmt.Fprintf(out, "%s:\n", name)
			for _, tool := range client.ToolsFromServers([]string{name}) {
				fmt.Fprintf(out, "  %s  %s\n", tool.Name, tool.Description)
			}
		}
		return nil
	},
}

var serversCallCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Invoke a tool by name on whichever server provides it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		arguments := map[string]any{}
		if len(args) == 2 {
			if err := json.Unmarshal([]byte(args[1]), &arguments); err != nil {
				return fmt.Errorf("parse arguments: %w", err)
			}
		}

		client, err := startServers(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = client.Stop() }()

		result, err := client.RouteToolCall(cmd.Context(), args[0], arguments)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(result.Content, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// startServers loads the server definitions and connects to all of them.
func startServers(cmd *cobra.Command) (*mcp.MultiClient, error) {
	servers, err := mcp.LoadConfig(afero.NewOsFs(), config.GetMCPConfigPath())
	if err != nil {
		return nil, err
	}

	var log io.Writer
	if verbose {
		log = cmd.ErrOrStderr()
	}

	client := mcp.NewMultiClient(servers, log)
	if err := client.Start(cmd.Context()); err != nil {
		return nil, err
	}
	return client, nil
}

func init() {
	serversCmd.AddCommand(serversListCmd, serversCallCmd)
	rootCmd.AddCommand(serversCmd)
}
