// Package status provides the commands that decode and build status codes.
package status

import (
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/internal/explain"
)

// exactlyOneArg rejects anything but a single positional argument.
func exactlyOneArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errorcodes.ErrWrongArgCount
	}

	return nil
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <code>",
		Short: "Explain an AP RO verification status code",
		Long: `Explain an AP RO verification status code.
The code may be hex (0x prefix optional), decimal, or a negative decimal
as printed by signed loggers. Values below 256 are read as TPM vendor
command statuses, larger ones as expanded verification results.`,
		Example: `  go_arv explain 0x01321122
  go_arv explain 4294963200
  go_arv explain 25`,
		Args: exactlyOneArg,
		RunE: runExplain,
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	word, err := explain.ParseArg(args[0])
	if err != nil {
		return err
	}

	e := explain.Explain(word)
	if _, err := e.WriteTo(cmd.OutOrStdout()); err != nil {
		return err
	}
	if e.Kind == explain.KindUnrecognized {
		return errorcodes.ErrUnrecognizedStatus
	}

	return nil
}
