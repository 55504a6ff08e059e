// Camhome-cfg is the CamHome command-line utility.
//
// It scans the local network for cameras, manages the registered camera
// list in the shared configuration file and checks that the machine has
// what discovery needs. A running camhome-server picks up camera changes
// automatically.
//
// Usage:
//
//	camhome-cfg [command] [flags]
//
// See 'camhome-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/logging"
	"github.com/marceloreis098/CamHome/internal/urls"
	"github.com/marceloreis098/CamHome/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configPath is shared by every command
var configPath string

var rootCmd = &cobra.Command{
	Use:   "camhome-cfg",
	Short: "CamHome configuration utility",
	Long: `A command-line utility for CamHome.

Scan the network for cameras, register them, and check discovery
prerequisites. Changes are written to the same configuration file the
server reads.

Documentation: ` + urls.GettingStarted,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless CAMHOME_LOG_LEVEL is set
		return logging.InitializeFromEnv()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")

	rootCmd.AddCommand(versionCmd)
}

// openStore loads the configuration file named by --config
func openStore() (*config.Store, error) {
	store, err := config.Open(configPath, logging.Named("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return store, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "camhome-cfg %s\n", version.Full())
	},
}
