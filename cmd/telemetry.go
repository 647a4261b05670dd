package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clarion/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry [on|off|status]",
	Short: "Manage anonymous usage telemetry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := telemetry.Load()
		if err != nil {
			return err
		}

		action := "status"
		if len(args) == 1 {
			action = args[0]
		}

		out := cmd.OutOrStdout()
		switch action {
		case "on":
			cfg.Enable()
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Telemetry enabled.")
		case "off":
			cfg.Disable()
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Telemetry disabled.")
		case "status":
			switch {
			case cfg.NeedsConsent():
				fmt.Fprintln(out, "Telemetry: not configured (disabled by default).")
			case cfg.IsEnabled():
				fmt.Fprintln(out, "Telemetry: enabled.")
			default:
				fmt.Fprintln(out, "Telemetry: disabled.")
			}
		default:
			return fmt.Errorf("unknown action %q (want on, off, or status)", action)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the clarion version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.AddCommand(telemetryCmd, versionCmd)
}
