// Package policy provides the provision commands over write-protect policy files.
package policy

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/config"
	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/internal/provision"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// errNoPolicy is returned when neither --policy nor policy.path is set.
var errNoPolicy = errors.New("no policy file: pass --policy or set policy.path")

// NewProvisionCommand creates the provision command group.
func NewProvisionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Write-protect policy operations",
		Long: `Validate write-protect policy files (YAML or TOML), render them as the
12-byte NVRAM image holding one descriptor per status register, and check
observed status register values against them.`,
	}

	cmd.PersistentFlags().String("policy", "", "Policy file (default is policy.path from config)")

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newImageCommand())
	cmd.AddCommand(newCheckCommand())

	return cmd
}

// loadPolicy reads and validates the selected policy file.
func loadPolicy(cmd *cobra.Command) (*provision.Policy, error) {
	path, _ := cmd.Flags().GetString("policy")
	if path == "" {
		path = config.Get().Policy.Path
	}
	if path == "" {
		return nil, errNoPolicy
	}

	p, err := provision.Load(path)
	if err != nil {
		return nil, err
	}
	if n := config.Get().Verify.RootKeyHashes; n != 0 {
		p.WithDefaultRootKeyHashes(n)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log.Debug().Str("policy", path).Msg("policy loaded")

	return p, nil
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a policy file and report every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadPolicy(cmd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "policy is valid")

			return nil
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the descriptors a policy provisions",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, _ []string) error {
	p, err := loadPolicy(cmd)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetTitle("Write-Protect Descriptors")
	t.AppendHeader(table.Row{"Register", "Descriptor", "NVRAM"})
	for i, d := range p.Descriptors() {
		b := d.Bytes()
		t.AppendRow(table.Row{
			fmt.Sprintf("SR%d", i+1),
			d.String(),
			strings.ToUpper(hex.EncodeToString(b[:])),
		})
	}
	t.Render()

	return nil
}

func newImageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Render the NVRAM image of a policy",
		Long: `Render the 12-byte NVRAM image of a policy as hex, or write it in binary
form with --out.`,
		Args: cobra.NoArgs,
		RunE: runImage,
	}

	cmd.Flags().String("out", "", "Write the raw image to this file")

	return cmd
}

func runImage(cmd *cobra.Command, _ []string) error {
	p, err := loadPolicy(cmd)
	if err != nil {
		return err
	}

	img := p.Image()
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := os.WriteFile(out, img[:], 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		log.Info().Str("path", out).Int("bytes", len(img)).Msg("image written")

		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.ToUpper(hex.EncodeToString(img[:])))

	return nil
}

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check observed status registers against a policy or NVRAM image",
		Long: `Check the observed values of status registers 1-3 against the provisioned
descriptors and print the resulting status word. The descriptors come from
--nvram when given, otherwise from the policy file.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	cmd.Flags().String("observed", "", "Observed SR1, SR2 and SR3 as 6 hex digits")
	cmd.Flags().String("nvram", "", "NVRAM image as 24 hex digits")

	if err := cmd.MarkFlagRequired("observed"); err != nil {
		panic(err)
	}

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	observedHex, _ := cmd.Flags().GetString("observed")
	nvramHex, _ := cmd.Flags().GetString("nvram")

	obs, err := hex.DecodeString(strings.TrimSpace(observedHex))
	if err != nil || len(obs) != 3 {
		return fmt.Errorf("%w: observed must be 6 hex digits, got %q", errorcodes.ErrInvalidArg, observedHex)
	}

	var descs [3]arv.WriteProtectDescriptor
	if nvramHex != "" {
		img, err := hex.DecodeString(strings.TrimSpace(nvramHex))
		if err != nil {
			return fmt.Errorf("%w: %w", errorcodes.ErrInvalidNVRAM, err)
		}
		if descs, err = provision.ParseImage(img); err != nil {
			return err
		}
	} else {
		p, err := loadPolicy(cmd)
		if err != nil {
			return err
		}
		descs = p.Descriptors()
	}

	res := provision.CheckRegisters(descs, [3]byte(obs))
	fmt.Fprintf(cmd.OutOrStdout(), "0x%08x %s\n", res.Uint32(), res)

	return res.Err()
}
