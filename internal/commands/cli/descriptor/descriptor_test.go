package descriptor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, err := NewDescriptorCommand()
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()

	return buf.String(), err
}

func TestEncode(t *testing.T) {
	t.Parallel()

	output, err := executeCommand(t, "encode", "--value", "0x80", "--mask", "0x80")
	require.NoError(t, err)
	assert.Equal(t, "807F807F\n", output)

	output, err = executeCommand(t, "encode", "--value", "0", "--mask", "0")
	require.NoError(t, err)
	assert.Equal(t, "00FF00FF\n", output)

	_, err = executeCommand(t, "encode", "--value", "0x81", "--mask", "0x80")
	require.ErrorIs(t, err, errorcodes.ErrInvalidArg)

	_, err = executeCommand(t, "encode", "--value", "1")
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	output, err := executeCommand(t, "decode", "807f807f")
	require.NoError(t, err)
	assert.Contains(t, output, "Descriptor: 80 & 80")
	assert.Contains(t, output, "register & 0x80 must equal 0x80")

	output, err = executeCommand(t, "decode", "FFFFFFFF")
	require.NoError(t, err)
	assert.Contains(t, output, "State: Blank\n")
	assert.NotContains(t, output, "stored value is")

	output, err = executeCommand(t, "decode", "12120000")
	require.NoError(t, err)
	assert.Contains(t, output, "State: Corrupted\n")

	output, err = executeCommand(t, "decode", "00ff00ff")
	require.NoError(t, err)
	assert.Contains(t, output, "matches any value")

	_, err = executeCommand(t, "decode", "807f80")
	require.ErrorIs(t, err, errorcodes.ErrInvalidNVRAM)

	_, err = executeCommand(t, "decode")
	require.ErrorIs(t, err, errorcodes.ErrWrongArgCount)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	output, err := executeCommand(t, "check", "--nvram", "807F807F", "--observed", "0x9c")
	require.NoError(t, err)
	assert.Equal(t, "match\n", output)

	output, err = executeCommand(t, "check", "--nvram", "807F807F", "--observed", "0x1c", "--register", "2")
	require.ErrorIs(t, err, errMismatch)
	assert.Contains(t, output, "mismatch: 0x031c8080\n")

	var verr arv.VerifyError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, arv.CodeFailedStatusRegister2, verr.Code())

	_, err = executeCommand(t, "check", "--nvram", "807F807F", "--observed", "0", "--register", "4")
	require.ErrorIs(t, err, errorcodes.ErrInvalidArg)
}
