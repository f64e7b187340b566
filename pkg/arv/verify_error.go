package arv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnrecognizedCode is returned when the code byte of a status word is not
// a known VerifyErrorCode.
var ErrUnrecognizedCode = errors.New("arv: unrecognized verify error code")

// VerifyError is an AP RO verification failure: a VerifyErrorCode and three
// bytes of kind-specific detail, most significant first.
//
// The zero value has code 0 and is never a valid error; it encodes to 0.
type VerifyError struct {
	code   VerifyErrorCode
	detail [3]byte
}

func newVerifyError(code VerifyErrorCode) VerifyError {
	return VerifyError{code: code}
}

// WithDetail returns a copy of e carrying detail.
func (e VerifyError) WithDetail(detail [3]byte) VerifyError {
	e.detail = detail

	return e
}

// Code returns the top-level kind.
func (e VerifyError) Code() VerifyErrorCode {
	return e.code
}

// Detail returns the three detail bytes.
func (e VerifyError) Detail() [3]byte {
	return e.detail
}

// WithFailedSignatureLocation records where a signature check failed. It is
// meant for FailedVerification errors built from SignatureVerifyFail.
func (e VerifyError) WithFailedSignatureLocation(loc SignatureLocation) VerifyError {
	e.detail[1] = uint8(loc)

	return e
}

// Uint32 packs the error as code<<24 | detail, big endian.
// The code is the most significant byte so every detailed value of one kind
// falls in a single contiguous range.
func (e VerifyError) Uint32() uint32 {
	return binary.BigEndian.Uint32([]byte{uint8(e.code), e.detail[0], e.detail[1], e.detail[2]})
}

// ParseVerifyError unpacks a status word. It fails with ErrUnrecognizedCode
// when the top byte is not a defined code. Detail bytes pass through as is.
func ParseVerifyError(v uint32) (VerifyError, error) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	code, ok := VerifyErrorCodeFromUint8(b[0])
	if !ok {
		return VerifyError{}, fmt.Errorf("%w: 0x%02x", ErrUnrecognizedCode, b[0])
	}

	return newVerifyError(code).WithDetail([3]byte{b[1], b[2], b[3]}), nil
}

func (e VerifyError) Error() string {
	return fmt.Sprintf("ap ro verification: %s (0x%08x)", e.code, e.Uint32())
}

// Errors without detail.
var (
	ErrInconsistentGscvd     = newVerifyError(CodeInconsistentGscvd)
	ErrInconsistentKeyblock  = newVerifyError(CodeInconsistentKeyblock)
	ErrInconsistentKey       = newVerifyError(CodeInconsistentKey)
	ErrSpiRead               = newVerifyError(CodeSpiRead)
	ErrOutOfMemory           = newVerifyError(CodeOutOfMemory)
	ErrTooBig                = newVerifyError(CodeTooBig)
	ErrMissingGscvd          = newVerifyError(CodeMissingGscvd)
	ErrSettingNotProvisioned = newVerifyError(CodeSettingNotProvisioned)
	ErrNonZeroGbbFlags       = newVerifyError(CodeNonZeroGbbFlags)
	ErrWrongRootKey          = newVerifyError(CodeWrongRootKey)
)

// FailedVerification builds a cryptographic verification failure.
func FailedVerification(d FailedVerificationDetail) VerifyError {
	return newVerifyError(CodeFailedVerification).WithDetail(PackFailedVerification(d))
}

// FailedStatusRegister builds a write-protect register failure for reg,
// recording the observed register value and the provisioned descriptor.
// It panics if reg is not one of the three defined registers.
func FailedStatusRegister(reg StatusRegister, observed uint8, expected WriteProtectDescriptor) VerifyError {
	code, ok := reg.Code()
	if !ok {
		panic(fmt.Sprintf("arv: unknown status register %d", reg))
	}

	return newVerifyError(code).WithDetail(PackStatusRegister(observed, expected))
}

// VersionMismatch builds an unsupported structure version error.
func VersionMismatch(source VersionMismatchSource) VerifyError {
	return newVerifyError(CodeVersionMismatch).WithDetail([3]byte{uint8(source), 0, 0})
}

// UnsupportedCryptoAlgorithm records where the algorithm was found and its raw id.
func UnsupportedCryptoAlgorithm(source CryptoAlgorithmSource, alg uint16) VerifyError {
	return newVerifyError(CodeUnsupportedCryptoAlgorithm).WithDetail(packSourceCode(uint8(source), alg))
}

// Internal records the failing subsystem and its raw 16-bit error code, which
// is passed through unexamined.
func Internal(source InternalErrorSource, code uint16) VerifyError {
	return newVerifyError(CodeInternal).WithDetail(packSourceCode(uint8(source), code))
}

// BoardIDMismatch keeps only the top 12 bits of each board ID.
func BoardIDMismatch(got, expected uint32) VerifyError {
	return newVerifyError(CodeBoardIDMismatch).WithDetail(PackBoardID(got, expected))
}
