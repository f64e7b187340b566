package arv_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/andrei-cloud/go_arv/pkg/arv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializedSuccessIsNotAVerifyError(t *testing.T) {
	t.Parallel()

	_, err := arv.ParseVerifyError(arv.SerializedSuccess)
	require.ErrorIs(t, err, arv.ErrUnrecognizedCode,
		"serialized success cannot overlap with any valid verify error")

	// No code/detail combination reaches the reserved pattern.
	for _, code := range arv.VerifyErrorCodes() {
		assert.NotEqual(t, uint8(arv.SerializedSuccess>>24), uint8(code))
	}
}

func TestZeroIsNotSuccess(t *testing.T) {
	t.Parallel()

	// Zero is the power-on-reset value of the long life scratch register.
	r := arv.ResultFromUint32(0)
	assert.False(t, r.IsSuccess())
	assert.Equal(t, arv.ErrCouldNotDeserialize, r.Err())

	var zero arv.Result
	assert.False(t, zero.IsSuccess())
	assert.Equal(t, uint32(0), zero.Uint32())
}

func TestOnlyTheNicheIsSuccess(t *testing.T) {
	t.Parallel()

	assert.True(t, arv.ResultFromUint32(arv.SerializedSuccess).IsSuccess())

	// Walk every top byte with a spread of low bits, including the
	// neighbours of the niche.
	lows := []uint32{0, 1, 0x00F000, 0xFFEFFF, 0xFFF000, 0xFFF001, 0xFFFFFF, 0x7FF000}
	for top := uint32(0); top <= 0xFF; top++ {
		for _, low := range lows {
			v := top<<24 | low
			if v == arv.SerializedSuccess {
				continue
			}
			if arv.ResultFromUint32(v).IsSuccess() {
				t.Fatalf("0x%08x decoded as success", v)
			}
		}
	}
	for _, v := range []uint32{arv.SerializedSuccess - 1, arv.SerializedSuccess + 1, ^uint32(0)} {
		assert.False(t, arv.ResultFromUint32(v).IsSuccess(), "0x%08x", v)
	}
}

func TestResultRoundTrip(t *testing.T) {
	t.Parallel()

	results := []arv.Result{
		arv.Success(),
		arv.Failure(arv.ErrSettingNotProvisioned),
		arv.Failure(arv.FailedVerification(arv.SignatureVerifyFail{Location: arv.SignatureLocationKeyblock})),
		arv.Failure(arv.FailedVerification(arv.DigestMismatch{Location: arv.DigestRootKey, Got: 1, Expected: 2})),
		arv.Failure(arv.Internal(arv.InternalKernel, 0xFFFF)),
		arv.Failure(arv.BoardIDMismatch(0xFFFFFFFF, 0)),
		arv.Failure(arv.UnsupportedCryptoAlgorithm(arv.CryptoAlgorithmPackedKey, 0xFFFF)),
		arv.Failure(arv.FailedStatusRegister(arv.StatusRegister3, 0xFF, arv.NewWriteProtectDescriptor(0, 0xFF))),
	}
	for _, r := range results {
		assert.Equal(t, r, arv.ResultFromUint32(r.Uint32()), r.String())
	}
}

func TestDecodeLatched(t *testing.T) {
	t.Parallel()

	r, latched := arv.DecodeLatched(arv.SerializedSuccess)
	assert.True(t, r.IsSuccess())
	assert.False(t, latched)

	word := arv.ErrSpiRead.Uint32() | arv.LatchSuccess
	r, latched = arv.DecodeLatched(word)
	assert.True(t, latched)
	assert.Equal(t, arv.ErrSpiRead, r.Err())

	r, latched = arv.DecodeLatched(arv.ErrTooBig.Uint32())
	assert.False(t, latched)
	assert.Equal(t, arv.ErrTooBig, r.Err())

	// Without masking, a latched word would not decode at all.
	assert.Equal(t, arv.ErrCouldNotDeserialize, arv.ResultFromUint32(word).Err())
}

func TestResultOf(t *testing.T) {
	t.Parallel()

	assert.True(t, arv.ResultOf(nil).IsSuccess())

	wrapped := fmt.Errorf("reading flash: %w", arv.ErrSpiRead)
	assert.Equal(t, arv.Failure(arv.ErrSpiRead), arv.ResultOf(wrapped))

	assert.Equal(t, arv.Failure(arv.ErrCouldNotDeserialize), arv.ResultOf(errors.New("boom")))
}

func TestResultString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", arv.Success().String())
	assert.Equal(t, "ap ro verification: TooBig (0x0d000000)", arv.Failure(arv.ErrTooBig).String())
	assert.NoError(t, arv.Success().Err())
}
