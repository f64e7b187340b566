package arv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestLocationsFitInANibble(t *testing.T) {
	t.Parallel()

	assert.Equal(t, digestLocationEnd, digestLocations.End())
	assert.LessOrEqual(t, digestLocations.End(), 0x10)
}

func TestFailedVerificationPacking(t *testing.T) {
	t.Parallel()

	for _, loc := range []DigestLocation{DigestProtectedRegions, DigestGvdCache, DigestRootKey} {
		d := DigestMismatch{Location: loc, Got: 0xAB, Expected: 0xCD}
		packed := PackFailedVerification(d)
		require.NotZero(t, packed[0]>>4, "digest mismatch must set the high nibble")

		back, hashes := UnpackFailedVerification(packed)
		assert.Equal(t, d, back)
		assert.Equal(t, NumRootKeyHashes, hashes)
	}

	for _, loc := range []SignatureLocation{SignatureLocationUnset, SignatureLocationGscvd, SignatureLocationKeyblock} {
		s := SignatureVerifyFail{Location: loc}
		packed := PackFailedVerification(s)
		assert.Equal(t, [3]byte{0, uint8(loc), 0}, packed)

		back, hashes := UnpackFailedVerification(packed)
		assert.Equal(t, s, back)
		assert.Zero(t, hashes)
	}

	// Images built with a different number of hashes are still readable.
	back, hashes := UnpackFailedVerification([3]byte{0x51, 0x01, 0x02})
	assert.Equal(t, DigestMismatch{Location: DigestProtectedRegions, Got: 1, Expected: 2}, back)
	assert.Equal(t, 4, hashes)
}

func TestStatusRegisterPacking(t *testing.T) {
	t.Parallel()

	d := UnpackStatusRegister(PackStatusRegister(0x9C, NewWriteProtectDescriptor(0x80, 0x84)))
	assert.Equal(t, StatusRegisterDetail{Observed: 0x9C, Expected: 0x80, Mask: 0x84}, d)
	_, ok := d.Problem()
	assert.False(t, ok)

	d = UnpackStatusRegister(PackStatusRegister(0x01, BlankWriteProtectDescriptor()))
	bad, ok := d.Problem()
	require.True(t, ok)
	assert.Equal(t, BadValueBlank, bad)

	d = UnpackStatusRegister(PackStatusRegister(0x01, DescriptorFromBytes([4]byte{0, 0, 0, 0})))
	bad, ok = d.Problem()
	require.True(t, ok)
	assert.Equal(t, BadValueCorrupted, bad)
}

func TestSourceCodePacking(t *testing.T) {
	t.Parallel()

	for _, code := range []uint16{0, 1, 0x00FF, 0x0100, 0x9876, 0xFFFF} {
		src, got := UnpackSourceCode(packSourceCode(7, code))
		assert.Equal(t, uint8(7), src)
		assert.Equal(t, code, got)
	}
}

func TestBoardIDPacking(t *testing.T) {
	t.Parallel()

	got, expected := UnpackBoardID(PackBoardID(0x01234567, 0x89abcdef))
	assert.Equal(t, uint16(0x012), got)
	assert.Equal(t, uint16(0x89a), expected)

	// Low 20 bits are discarded.
	assert.Equal(t, PackBoardID(0x5a500000, 0x5a5fffff), PackBoardID(0x5a5fffff, 0x5a500000))
	got, expected = UnpackBoardID(PackBoardID(0xFFFFFFFF, 0x5a5a5a5a))
	assert.Equal(t, uint16(0xFFF), got)
	assert.Equal(t, uint16(0x5a5), expected)
}

func TestSourceEnums(t *testing.T) {
	t.Parallel()

	_, ok := CryptoAlgorithmSourceFromUint8(2)
	assert.False(t, ok)
	src, ok := CryptoAlgorithmSourceFromUint8(4)
	assert.True(t, ok)
	assert.Equal(t, "Vb2PackedKey", src.String())

	is, ok := InternalErrorSourceFromUint8(4)
	assert.True(t, ok)
	assert.Equal(t, InternalCouldNotDeserialize, is)
	_, ok = InternalErrorSourceFromUint8(0)
	assert.False(t, ok)

	_, ok = VersionMismatchSourceFromUint8(3)
	assert.False(t, ok)
	_, ok = SignatureLocationFromUint8(0)
	assert.False(t, ok, "unset is not a location")
	_, ok = DigestLocationFromUint8(4)
	assert.False(t, ok)

	for _, r := range []StatusRegister{StatusRegister1, StatusRegister2, StatusRegister3} {
		code, ok := r.Code()
		require.True(t, ok)
		back, ok := StatusRegisterForCode(code)
		require.True(t, ok)
		assert.Equal(t, r, back)
	}
	_, ok = StatusRegisterForCode(CodeSpiRead)
	assert.False(t, ok)
}

func TestCheckRootKeyHashCount(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRootKeyHashCount(NumRootKeyHashes))
	assert.Equal(t, Internal(InternalRootKeyHashCount, 3), CheckRootKeyHashCount(3))
	assert.Equal(t, Internal(InternalRootKeyHashCount, 0xFFFF), CheckRootKeyHashCount(-1))
}
