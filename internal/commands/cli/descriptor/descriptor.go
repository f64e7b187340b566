// Package descriptor provides commands for single write-protect descriptors.
package descriptor

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// NewDescriptorCommand creates the descriptor command group.
func NewDescriptorCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "descriptor",
		Short: "Write-protect descriptor operations",
		Long: `Encode, decode and check the 4-byte write-protect descriptors stored in
NVRAM for each status register: expected value, its inverse, mask, and
the mask inverse.`,
	}

	encodeCmd, err := newEncodeCommand()
	if err != nil {
		return nil, err
	}
	checkCmd, err := newCheckCommand()
	if err != nil {
		return nil, err
	}

	cmd.AddCommand(encodeCmd)
	cmd.AddCommand(newDecodeCommand())
	cmd.AddCommand(checkCmd)

	return cmd, nil
}

func newEncodeCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode an expected value and mask into NVRAM bytes",
		RunE:  runEncode,
	}

	cmd.Flags().Uint8("value", 0, "Expected register value")
	cmd.Flags().Uint8("mask", 0, "Bits of the register to compare")

	if err := cmd.MarkFlagRequired("value"); err != nil {
		return nil, err
	}
	if err := cmd.MarkFlagRequired("mask"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func runEncode(cmd *cobra.Command, _ []string) error {
	value, _ := cmd.Flags().GetUint8("value")
	mask, _ := cmd.Flags().GetUint8("mask")
	if value&^mask != 0 {
		return fmt.Errorf("%w: value 0x%02x sets bits outside mask 0x%02x", errorcodes.ErrInvalidArg, value, mask)
	}

	b := arv.NewWriteProtectDescriptor(value, mask).Bytes()
	fmt.Fprintln(cmd.OutOrStdout(), strings.ToUpper(hex.EncodeToString(b[:])))

	return nil
}

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <nvram>",
		Short: "Decode 4 NVRAM bytes given as 8 hex digits",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errorcodes.ErrWrongArgCount
			}

			return nil
		},
		RunE: runDecode,
	}
}

func parseNVRAM(s string) (arv.WriteProtectDescriptor, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(raw) != arv.DescriptorSize {
		return arv.WriteProtectDescriptor{}, fmt.Errorf("%w: want %d hex digits, got %q",
			errorcodes.ErrInvalidNVRAM, 2*arv.DescriptorSize, s)
	}

	return arv.DescriptorFromBytes([arv.DescriptorSize]byte(raw)), nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	d, err := parseNVRAM(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Descriptor: %s\n", d)
	expected, mask, err := d.Get()
	switch {
	case err != nil:
		var bad arv.BadValue
		if errors.As(err, &bad) {
			fmt.Fprintf(out, "State: %s\n", bad.String())
		} else {
			fmt.Fprintf(out, "State: %s\n", err)
		}
	case mask == 0:
		fmt.Fprintln(out, "State: provisioned, matches any value")
	default:
		fmt.Fprintf(out, "State: provisioned, register & 0x%02x must equal 0x%02x\n", mask, expected&mask)
	}

	return nil
}

func newCheckCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check an observed register value against a descriptor",
		Long: `Check an observed status register value against a descriptor. On a
mismatch the FailedStatusRegister error word for the chosen register is
printed and the command fails.`,
		RunE: runCheck,
	}

	cmd.Flags().String("nvram", "", "Descriptor as 8 hex digits")
	cmd.Flags().Uint8("observed", 0, "Observed register value")
	cmd.Flags().Uint8("register", 1, "Status register number (1-3)")

	if err := cmd.MarkFlagRequired("nvram"); err != nil {
		return nil, err
	}
	if err := cmd.MarkFlagRequired("observed"); err != nil {
		return nil, err
	}

	return cmd, nil
}

// errMismatch is returned after the failing word has been printed.
var errMismatch = errors.New("status register does not match descriptor")

func runCheck(cmd *cobra.Command, _ []string) error {
	nvram, _ := cmd.Flags().GetString("nvram")
	observed, _ := cmd.Flags().GetUint8("observed")
	regNum, _ := cmd.Flags().GetUint8("register")

	reg := arv.StatusRegister(regNum)
	if _, ok := reg.Code(); !ok {
		return fmt.Errorf("%w: register %d", errorcodes.ErrInvalidArg, regNum)
	}
	d, err := parseNVRAM(nvram)
	if err != nil {
		return err
	}

	if d.Matches(observed) {
		fmt.Fprintln(cmd.OutOrStdout(), "match")

		return nil
	}
	verr := arv.FailedStatusRegister(reg, observed, d)
	fmt.Fprintf(cmd.OutOrStdout(), "mismatch: 0x%08x\n", verr.Uint32())

	return fmt.Errorf("%w: %w", errMismatch, verr)
}
