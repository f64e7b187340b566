// Package cli provides centralized command registration.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/commands/cli/compose"
	"github.com/andrei-cloud/go_arv/internal/commands/cli/descriptor"
	"github.com/andrei-cloud/go_arv/internal/commands/cli/policy"
	"github.com/andrei-cloud/go_arv/internal/commands/cli/server"
	"github.com/andrei-cloud/go_arv/internal/commands/cli/status"
)

// RegisterCommands registers all root commands.
func RegisterCommands(root *cobra.Command) error {
	// Status code commands.
	root.AddCommand(status.NewExplainCommand())
	root.AddCommand(status.NewCodesCommand())

	root.AddCommand(status.NewEncodeCommand())
	root.AddCommand(compose.NewComposeCommand())

	// Write-protect commands.
	descriptorCmd, err := descriptor.NewDescriptorCommand()
	if err != nil {
		return fmt.Errorf("failed to create descriptor command: %w", err)
	}
	root.AddCommand(descriptorCmd)
	root.AddCommand(policy.NewProvisionCommand())

	root.AddCommand(server.NewServeCommand())

	return nil
}
