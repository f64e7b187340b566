package status

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/encode"
	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/internal/explain"
)

// NewEncodeCommand creates the encode command.
func NewEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <kind>",
		Short: "Build a verification error word",
		Long: `Build the 32-bit word of a verification error from its kind and detail
parameters. Kinds are named as in the codes table, e.g. board-id-mismatch,
or by number. Parameters not given take their default.`,
		Example: `  go_arv encode spi-read
  go_arv encode failed-verification --param location=2,got=0x11,expected=0x22
  go_arv encode internal --describe`,
		Args: exactlyOneArg,
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			kinds := encode.Kinds()
			names := make([]string, len(kinds))
			for i, k := range kinds {
				names[i] = k.Name()
			}

			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runEncode,
	}

	cmd.Flags().StringToStringP("param", "p", nil, "Detail parameters as name=value (hex with 0x)")
	cmd.Flags().Bool("describe", false, "List the parameters of the kind instead of encoding")
	cmd.Flags().Bool("explain", false, "Also print the explanation of the result")

	return cmd
}

func runEncode(cmd *cobra.Command, args []string) error {
	kind, err := encode.Lookup(args[0])
	if err != nil {
		return err
	}

	if describe, _ := cmd.Flags().GetBool("describe"); describe {
		describeKind(cmd, kind)

		return nil
	}

	raw, _ := cmd.Flags().GetStringToString("param")
	values, err := parseParams(raw)
	if err != nil {
		return err
	}

	verr, err := kind.Build(values)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "0x%08x\n", verr.Uint32())
	if withExplain, _ := cmd.Flags().GetBool("explain"); withExplain {
		if _, err := explain.Explain(verr.Uint32()).WriteTo(out); err != nil {
			return err
		}
	}

	return nil
}

// parseParams converts name=value strings. Values accept any Go integer
// literal base.
func parseParams(raw map[string]string) (map[string]int64, error) {
	values := make(map[string]int64, len(raw))
	for name, s := range raw {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", errorcodes.ErrInvalidArg, name, s)
		}
		values[strings.TrimSpace(name)] = v
	}

	return values, nil
}

func describeKind(cmd *cobra.Command, kind encode.Kind) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetTitle("%s (%d)", kind.Name(), uint8(kind.Code))
	t.AppendHeader(table.Row{"Parameter", "Values", "Default", "Description"})
	for _, p := range kind.Params {
		t.AppendRow(table.Row{p.Name, valueRange(p), p.Default(), p.Description})
	}
	if len(kind.Params) == 0 {
		t.AppendRow(table.Row{"-", "-", "-", "This kind carries no detail"})
	}
	t.Render()
}

func valueRange(p encode.Param) string {
	if len(p.Options) == 0 {
		return fmt.Sprintf("%d..%d", p.Min, p.Max)
	}
	opts := make([]string, len(p.Options))
	for i, o := range p.Options {
		opts[i] = fmt.Sprintf("%d=%s", o.Value, o.Label)
	}

	return strings.Join(opts, " ")
}
