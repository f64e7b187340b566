// Package compose provides the interactive status word builder.
package compose

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/explain"
)

// NewComposeCommand creates the compose command.
func NewComposeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Interactively build a verification status word",
		Long: `Pick a verification error kind and fill in its detail parameters in an
interactive terminal UI. The resulting status word is printed on exit.`,
		Args: cobra.NoArgs,
		RunE: runCompose,
	}

	cmd.Flags().Bool("explain", false, "Also print the explanation of the result")

	return cmd
}

func runCompose(cmd *cobra.Command, _ []string) error {
	word, ok, err := runComposeTUI()
	if err != nil {
		return fmt.Errorf("compose UI failed: %w", err)
	}
	if !ok {
		cmd.PrintErrln("Operation cancelled.")

		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "0x%08x\n", word)
	if withExplain, _ := cmd.Flags().GetBool("explain"); withExplain {
		if _, err := explain.Explain(word).WriteTo(out); err != nil {
			return err
		}
	}

	return nil
}
