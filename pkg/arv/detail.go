package arv

import (
	"encoding/binary"
	"fmt"

	"github.com/andrei-cloud/go_arv/pkg/enumrange"
)

// Detail layouts below are persisted. Values may only be appended.

// InternalErrorSource is the first detail byte of an Internal error.
type InternalErrorSource uint8

const (
	// InternalKernel means the low 16 bits are a kernel error code.
	InternalKernel InternalErrorSource = 1

	// InternalCrypto means the low 16 bits are a crypto engine error (negative values).
	InternalCrypto InternalErrorSource = 2

	// InternalVerifyFlashRanges should never happen.
	InternalVerifyFlashRanges InternalErrorSource = 3

	// InternalCouldNotDeserialize means a stored result word could not be parsed again.
	InternalCouldNotDeserialize InternalErrorSource = 4

	// InternalRootKeyHashCount means the provisioned number of root key hashes
	// differs from NumRootKeyHashes. The low 16 bits carry the provisioned count.
	InternalRootKeyHashCount InternalErrorSource = 5
)

var internalErrorSources = enumrange.Sequential(1, 5)

// InternalErrorSourceFromUint8 returns the source for v, if defined.
func InternalErrorSourceFromUint8(v uint8) (InternalErrorSource, bool) {
	return enumrange.Lookup[InternalErrorSource](internalErrorSources, v)
}

func (s InternalErrorSource) String() string {
	switch s {
	case InternalKernel:
		return "Kernel"
	case InternalCrypto:
		return "Crypto"
	case InternalVerifyFlashRanges:
		return "VerifyFlashRanges"
	case InternalCouldNotDeserialize:
		return "CouldNotDeserialize"
	case InternalRootKeyHashCount:
		return "RootKeyHashCount"
	}

	return fmt.Sprintf("InternalErrorSource(%d)", uint8(s))
}

// VersionMismatchSource is the first detail byte of a VersionMismatch error.
type VersionMismatchSource uint8

const (
	VersionMismatchGscvd    VersionMismatchSource = 1
	VersionMismatchKeyblock VersionMismatchSource = 2
)

var versionMismatchSources = enumrange.Sequential(1, 2)

// VersionMismatchSourceFromUint8 returns the source for v, if defined.
func VersionMismatchSourceFromUint8(v uint8) (VersionMismatchSource, bool) {
	return enumrange.Lookup[VersionMismatchSource](versionMismatchSources, v)
}

func (s VersionMismatchSource) String() string {
	switch s {
	case VersionMismatchGscvd:
		return "Gscvd"
	case VersionMismatchKeyblock:
		return "Keyblock"
	}

	return fmt.Sprintf("VersionMismatchSource(%d)", uint8(s))
}

// CryptoAlgorithmSource is the first detail byte of an UnsupportedCryptoAlgorithm error.
type CryptoAlgorithmSource uint8

const (
	CryptoAlgorithmGscvd CryptoAlgorithmSource = 1

	// CryptoAlgorithmPackedKey is a vb2 packed key, either the root or the platform key.
	CryptoAlgorithmPackedKey CryptoAlgorithmSource = 4
)

var cryptoAlgorithmSources = enumrange.New(
	enumrange.Range{First: 1, Last: 1},
	enumrange.Range{First: 4, Last: 4},
)

// CryptoAlgorithmSourceFromUint8 returns the source for v, if defined.
func CryptoAlgorithmSourceFromUint8(v uint8) (CryptoAlgorithmSource, bool) {
	return enumrange.Lookup[CryptoAlgorithmSource](cryptoAlgorithmSources, v)
}

func (s CryptoAlgorithmSource) String() string {
	switch s {
	case CryptoAlgorithmGscvd:
		return "Gscvd"
	case CryptoAlgorithmPackedKey:
		return "Vb2PackedKey"
	}

	return fmt.Sprintf("CryptoAlgorithmSource(%d)", uint8(s))
}

// SignatureLocation is the second detail byte of a signature verification
// failure. It is attached after the error is built, zero means unset.
type SignatureLocation uint8

const (
	SignatureLocationUnset    SignatureLocation = 0
	SignatureLocationGscvd    SignatureLocation = 1
	SignatureLocationKeyblock SignatureLocation = 2
)

var signatureLocations = enumrange.Sequential(1, 2)

// SignatureLocationFromUint8 returns the location for v, if defined.
func SignatureLocationFromUint8(v uint8) (SignatureLocation, bool) {
	return enumrange.Lookup[SignatureLocation](signatureLocations, v)
}

func (l SignatureLocation) String() string {
	switch l {
	case SignatureLocationUnset:
		return "Unset"
	case SignatureLocationGscvd:
		return "Gscvd"
	case SignatureLocationKeyblock:
		return "Keyblock"
	}

	return fmt.Sprintf("SignatureLocation(%d)", uint8(l))
}

// DigestLocation is the low nibble of the first detail byte of a digest
// mismatch. It can never exceed 15.
type DigestLocation uint8

const (
	// DigestProtectedRegions covers the protected AP flash regions described by the GSCVD.
	DigestProtectedRegions DigestLocation = 1

	// DigestGvdCache is the cache for the GSCVD header.
	DigestGvdCache DigestLocation = 2

	// DigestRootKey is the root key.
	DigestRootKey DigestLocation = 3
)

var digestLocations = enumrange.Sequential(1, 3)

// Fails to compile once a location no longer fits in a nibble.
var _ = [0x10 - digestLocationEnd]struct{}{}

const digestLocationEnd = 4

// DigestLocationFromUint8 returns the location for v, if defined.
func DigestLocationFromUint8(v uint8) (DigestLocation, bool) {
	return enumrange.Lookup[DigestLocation](digestLocations, v)
}

func (l DigestLocation) String() string {
	switch l {
	case DigestProtectedRegions:
		return "ProtectedRegions"
	case DigestGvdCache:
		return "GvdCache"
	case DigestRootKey:
		return "RootKey"
	}

	return fmt.Sprintf("DigestLocation(%d)", uint8(l))
}

// StatusRegister selects one of the SPI flash write-protect status registers.
type StatusRegister uint8

const (
	// StatusRegister1 is read with command 05h.
	StatusRegister1 StatusRegister = 1
	// StatusRegister2 is read with command 35h.
	StatusRegister2 StatusRegister = 2
	// StatusRegister3 is read with command 15h.
	StatusRegister3 StatusRegister = 3
)

// Code returns the VerifyErrorCode reported when the register fails its check.
func (r StatusRegister) Code() (VerifyErrorCode, bool) {
	switch r {
	case StatusRegister1:
		return CodeFailedStatusRegister1, true
	case StatusRegister2:
		return CodeFailedStatusRegister2, true
	case StatusRegister3:
		return CodeFailedStatusRegister3, true
	}

	return 0, false
}

// StatusRegisterForCode maps a FailedStatusRegisterN code back to its register.
func StatusRegisterForCode(c VerifyErrorCode) (StatusRegister, bool) {
	switch c {
	case CodeFailedStatusRegister1:
		return StatusRegister1, true
	case CodeFailedStatusRegister2:
		return StatusRegister2, true
	case CodeFailedStatusRegister3:
		return StatusRegister3, true
	}

	return 0, false
}

// FailedVerificationDetail is the detail of a FailedVerification error:
// either DigestMismatch or SignatureVerifyFail.
type FailedVerificationDetail interface {
	pack() [3]byte
}

// DigestMismatch records which digest differed and the first byte of the
// calculated and expected hashes.
type DigestMismatch struct {
	Location DigestLocation
	Got      uint8
	Expected uint8
}

// SignatureVerifyFail is a failed signature check. Location is usually
// attached later with VerifyError.WithFailedSignatureLocation.
type SignatureVerifyFail struct {
	Location SignatureLocation
}

// The first detail byte of a digest mismatch is (1+NumRootKeyHashes)<<4 | location,
// so its high nibble is never zero. A signature failure keeps it at zero.
func (d DigestMismatch) pack() [3]byte {
	top := uint8(1+NumRootKeyHashes)<<4 | uint8(d.Location)&0x0F

	return [3]byte{top, d.Got, d.Expected}
}

func (s SignatureVerifyFail) pack() [3]byte {
	return [3]byte{0, uint8(s.Location), 0}
}

// PackFailedVerification returns the detail bytes for d.
func PackFailedVerification(d FailedVerificationDetail) [3]byte {
	return d.pack()
}

// UnpackFailedVerification splits FailedVerification detail bytes. For a
// digest mismatch it also returns the root key hash count recorded by the
// firmware that produced it; the count is zero for signature failures.
func UnpackFailedVerification(detail [3]byte) (FailedVerificationDetail, int) {
	top := detail[0]
	if top>>4 == 0 {
		return SignatureVerifyFail{Location: SignatureLocation(detail[1])}, 0
	}

	return DigestMismatch{
		Location: DigestLocation(top & 0x0F),
		Got:      detail[1],
		Expected: detail[2],
	}, int(top>>4) - 1
}

// StatusRegisterDetail is the unpacked detail of a FailedStatusRegisterN error.
type StatusRegisterDetail struct {
	Observed uint8
	Expected uint8
	Mask     uint8
}

// PackStatusRegister returns [observed, expected, mask]. A descriptor that
// cannot be read is recorded with a zero mask and its BadValue in place of
// the expected value, since a real zero mask would always pass.
func PackStatusRegister(observed uint8, desc WriteProtectDescriptor) [3]byte {
	expected, mask, err := desc.Get()
	if err != nil {
		bad, _ := err.(BadValue)

		return [3]byte{observed, uint8(bad), 0}
	}

	return [3]byte{observed, expected, mask}
}

// UnpackStatusRegister splits FailedStatusRegisterN detail bytes.
func UnpackStatusRegister(detail [3]byte) StatusRegisterDetail {
	return StatusRegisterDetail{Observed: detail[0], Expected: detail[1], Mask: detail[2]}
}

// Problem returns the BadValue stored in place of the expected value when
// the mask is zero.
func (d StatusRegisterDetail) Problem() (BadValue, bool) {
	if d.Mask != 0 {
		return 0, false
	}

	return BadValueFromUint8(d.Expected)
}

// packSourceCode lays out [source, hi(code), lo(code)].
func packSourceCode(source uint8, code uint16) [3]byte {
	var d [3]byte
	d[0] = source
	binary.BigEndian.PutUint16(d[1:], code)

	return d
}

// UnpackSourceCode splits [source, hi, lo] detail bytes used by
// UnsupportedCryptoAlgorithm and Internal errors.
func UnpackSourceCode(detail [3]byte) (uint8, uint16) {
	return detail[0], binary.BigEndian.Uint16(detail[1:])
}

// PackBoardID keeps the top 12 bits of each board ID: got in the first three
// nibbles, expected in the last three.
func PackBoardID(got, expected uint32) [3]byte {
	packed := got>>20<<12 | expected>>20

	return [3]byte{uint8(packed >> 16), uint8(packed >> 8), uint8(packed)}
}

// UnpackBoardID returns the 12-bit prefixes of the GSCVD and on-chip board IDs.
func UnpackBoardID(detail [3]byte) (uint16, uint16) {
	got := uint16(detail[0])<<4 | uint16(detail[1])>>4
	expected := uint16(detail[1]&0x0F)<<8 | uint16(detail[2])

	return got, expected
}
