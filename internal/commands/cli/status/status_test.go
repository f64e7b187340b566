package status

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()

	return buf.String(), err
}

func TestExplainCommand(t *testing.T) {
	t.Parallel()

	output, err := executeCommand(NewExplainCommand(), "0x01321122")
	require.NoError(t, err)
	assert.Contains(t, output, "Top level code: FailedVerification (1)")
	assert.Contains(t, output, "GvdCache")

	output, err = executeCommand(NewExplainCommand(), "4294963200")
	require.NoError(t, err)
	assert.Contains(t, output, "It is a SUCCESS status")
}

func TestExplainCommandErrors(t *testing.T) {
	t.Parallel()

	_, err := executeCommand(NewExplainCommand())
	require.ErrorIs(t, err, errorcodes.ErrWrongArgCount)

	_, err = executeCommand(NewExplainCommand(), "1", "2")
	require.ErrorIs(t, err, errorcodes.ErrWrongArgCount)

	_, err = executeCommand(NewExplainCommand(), "nothex")
	require.ErrorIs(t, err, errorcodes.ErrInvalidArg)

	output, err := executeCommand(NewExplainCommand(), "0x13000000")
	require.ErrorIs(t, err, errorcodes.ErrUnrecognizedStatus)
	assert.Contains(t, output, "not recognized")
}

func TestCodesCommand(t *testing.T) {
	t.Parallel()

	output, err := executeCommand(NewCodesCommand())
	require.NoError(t, err)
	assert.Contains(t, output, "Board Id Mismatch")
	assert.Contains(t, output, "board-id-mismatch")
	assert.Contains(t, output, "0x0fdddddd")
	assert.Contains(t, output, "0x08000000")
	// Footers are upper-cased by the table style.
	assert.Contains(t, strings.ToLower(output), "0xfffff000")
	assert.Contains(t, output, "WrongRootkey")
	assert.NotContains(t, output, "TpmvStatus(34)")

	output, err = executeCommand(NewCodesCommand(), "--markdown")
	require.NoError(t, err)
	assert.Contains(t, output, "| 15")
	assert.NotContains(t, output, "+--")
}

func TestEncodeCommand(t *testing.T) {
	t.Parallel()

	output, err := executeCommand(NewEncodeCommand(), "spi-read")
	require.NoError(t, err)
	assert.Equal(t, "0x08000000\n", output)

	output, err = executeCommand(NewEncodeCommand(), "failed-verification",
		"--param", "location=2,got=0x11,expected=0x22")
	require.NoError(t, err)
	assert.Equal(t, "0x01321122\n", output)

	output, err = executeCommand(NewEncodeCommand(), "BoardIdMismatch",
		"-p", "got=0x5a5a5a5a", "-p", "expected=0x01234567", "--explain")
	require.NoError(t, err)
	assert.Contains(t, output, "0x0f5a5012\n")
	assert.Contains(t, output, "probably ZZCR")

	output, err = executeCommand(NewEncodeCommand(), "failed-verification")
	require.NoError(t, err)
	assert.Equal(t, "0x01310000\n", output)

	output, err = executeCommand(NewEncodeCommand(), "board-id-mismatch",
		"-p", "got=0xffffffff", "-p", "expected=0xffffffff")
	require.NoError(t, err)
	assert.Equal(t, "0x0fffffff\n", output)
}

func TestEncodeCommandDescribe(t *testing.T) {
	t.Parallel()

	output, err := executeCommand(NewEncodeCommand(), "internal", "--describe")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(output), "internal (12)")
	assert.Contains(t, output, "5=RootKeyHashCount")
	assert.Contains(t, output, "0..65535")

	output, err = executeCommand(NewEncodeCommand(), "too-big", "--describe")
	require.NoError(t, err)
	assert.Contains(t, output, "This kind carries no detail")
}

func TestEncodeCommandErrors(t *testing.T) {
	t.Parallel()

	_, err := executeCommand(NewEncodeCommand(), "no-such-kind")
	require.ErrorIs(t, err, errorcodes.ErrUnknownKind)

	_, err = executeCommand(NewEncodeCommand(), "internal", "-p", "code=zz")
	require.ErrorIs(t, err, errorcodes.ErrInvalidArg)

	_, err = executeCommand(NewEncodeCommand(), "internal", "-p", "code=0x10000")
	require.ErrorIs(t, err, errorcodes.ErrInvalidArg)

	_, err = executeCommand(NewEncodeCommand(), "board-id-mismatch", "-p", "got=0x100000000")
	require.ErrorIs(t, err, errorcodes.ErrInvalidArg)
}
