// Package cli provides the CLI command structure for go_arv.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/config"
	"github.com/andrei-cloud/go_arv/internal/logging"
)

// NewRootCommand creates and returns the root command with all subcommands.
func NewRootCommand() (*cobra.Command, error) {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "go_arv",
		Short: "AP RO verification status codes and write-protect provisioning",
		Long: `Decode, build and serve AP RO verification status codes, and
provision the write-protect status register descriptors checked during
verification.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Initialize configuration before running any command.
			if err := config.Initialize(cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// Bind flags to the freshly created viper instance.
			v := config.GetViper()
			flags := cmd.Root().PersistentFlags()
			if err := v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
				return err
			}
			if err := v.BindPFlag("log.format", flags.Lookup("log-format")); err != nil {
				return err
			}
			if err := config.Refresh(); err != nil {
				return err
			}

			cfg := config.Get()
			logging.InitFromStrings(cfg.Log.Level, cfg.Log.Format)

			return nil
		},
	}

	// Add persistent flags that affect all commands.
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default is $HOME/.go_arv/config.yaml)")

	// Add global flags that can override config file settings.
	rootCmd.PersistentFlags().
		String("log-level", "info", "logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "human", "logging format (human, json)")

	// Register all commands.
	if err := RegisterCommands(rootCmd); err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	return rootCmd, nil
}
