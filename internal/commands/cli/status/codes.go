package status

import (
	"fmt"
	"strings"

	"github.com/fatih/camelcase"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/encode"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// NewCodesCommand creates the codes command.
func NewCodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List all verification error codes and TPM statuses",
		Long: `List every expanded verification error code with its kind name and
description, followed by the one-byte statuses reported by the TPM vendor
command.`,
		Args: cobra.NoArgs,
		RunE: runCodes,
	}

	cmd.Flags().Bool("markdown", false, "Render tables as markdown")

	return cmd
}

func runCodes(cmd *cobra.Command, _ []string) error {
	markdown, _ := cmd.Flags().GetBool("markdown")
	render := func(t table.Writer) {
		if markdown {
			t.RenderMarkdown()
		} else {
			t.Render()
		}
	}

	codes := table.NewWriter()
	codes.SetOutputMirror(cmd.OutOrStdout())
	codes.SetTitle("Verification Error Codes")
	codes.AppendHeader(table.Row{"Code", "Word", "Name", "Kind", "Detail", "Description"})
	for _, c := range arv.VerifyErrorCodes() {
		detail, low := "-", "000000"
		if c.HasDetail() {
			detail, low = "yes", "dddddd"
		}
		codes.AppendRow(table.Row{
			uint8(c),
			fmt.Sprintf("0x%02x%s", uint8(c), low),
			strings.Join(camelcase.Split(c.String()), " "),
			encode.KebabName(c.String()),
			detail,
			c.Description(),
		})
	}
	codes.AppendFooter(table.Row{"", fmt.Sprintf("0x%08x", arv.SerializedSuccess), "Success", "", "", "Verification passed"})
	render(codes)

	fmt.Fprintln(cmd.OutOrStdout())

	tpmv := table.NewWriter()
	tpmv.SetOutputMirror(cmd.OutOrStdout())
	tpmv.SetTitle("TPM Vendor Command Statuses")
	tpmv.AppendHeader(table.Row{"Value", "Hex", "Name", "Message"})
	for _, s := range arv.TpmvStatuses() {
		tpmv.AppendRow(table.Row{uint8(s), fmt.Sprintf("0x%02x", uint8(s)), s.Name(), s.String()})
	}
	render(tpmv)

	return nil
}
