// Package cmd implements the clarion CLI.
package cmd

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clarion/internal/config"
	"clarion/internal/globals"
	"clarion/internal/telemetry"
)

const (
	configName = ".clarion"
	envPrefix  = "CLARION"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "clarion",
	Short: "Clarion asks the right clarifying questions for agent workflows.",
	Long: `Clarion is the clarification layer of an agent workflow: it composes the
questions that ask users for missing information, records the answers in a
shared store, and never asks for what is already known.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.clarion.yaml or $HOME/.clarion.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
	}

	// A missing config file is fine; flags, env, and defaults cover it.
	_ = viper.ReadInConfig()
}

// openStore opens the answer store at the configured location.
func openStore() (globals.Store, error) {
	return globals.NewSQLiteStore(config.GetGlobalsBasePath())
}

// newTelemetryClient builds the telemetry client from local consent state
// and the configured PostHog key. Failures degrade to a no-op client.
func newTelemetryClient() telemetry.Client {
	cfg, err := telemetry.Load()
	if err != nil {
		return telemetry.NewNoopClient()
	}

	client, err := telemetry.NewPostHogClient(telemetry.ClientConfig{
		APIKey:  viper.GetString("telemetry.apiKey"),
		Version: version,
		Config:  cfg,
	})
	if err != nil {
		return telemetry.NewNoopClient()
	}
	return client
}
