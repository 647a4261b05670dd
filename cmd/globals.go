package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"clarion/internal/schema"
	"clarion/internal/ui"
)

var globalsJSON bool

var globalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "Inspect and edit the answer store",
}

var globalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all keys in the answer store",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entries, err := store.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if globalsJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "The answer store is empty.")
			return nil
		}
		for _, e := range entries {
			if e.Answered() {
				fmt.Fprintf(out, "%s = %s\n", ui.StyleSuccess.Render(e.Key), e.Answer)
			} else {
				fmt.Fprintf(out, "%s %s\n", ui.StyleSubtle.Render(e.Key), ui.StyleSubtle.Render("(pending)"))
			}
		}
		return nil
	},
}

var globalsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entry, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("key %q not found", args[0])
		}

		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var globalsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Record an answer directly",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !schema.ValidGlobalKey(key) {
			return fmt.Errorf("key %q is not a snake_case key", key)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Answer(key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
		return nil
	},
}

var globalsClearCmd = &cobra.Command{
	Use:   "clear <key>...",
	Short: "Remove entries from the answer store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		for _, key := range args {
			if err := store.Clear(key); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d key(s)\n", len(args))
		return nil
	},
}

func init() {
	globalsListCmd.Flags().BoolVar(&globalsJSON, "json", false, "output as JSON")
	globalsCmd.AddCommand(globalsListCmd, globalsGetCmd, globalsSetCmd, globalsClearCmd)
	rootCmd.AddCommand(globalsCmd)
}
