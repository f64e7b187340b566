package arv

import (
	"fmt"

	"github.com/andrei-cloud/go_arv/pkg/enumrange"
)

// VerifyErrorCode is the top-level kind of a VerifyError, stored in the most
// significant byte of the status word. Zero is never a valid code.
type VerifyErrorCode uint8

const (
	// CodeFailedVerification means consistent verification data was found,
	// but it failed cryptographic verification.
	CodeFailedVerification VerifyErrorCode = 1

	// CodeFailedStatusRegister1 means write-protect status register 1 (05h)
	// did not match the provisioned descriptor.
	CodeFailedStatusRegister1 VerifyErrorCode = 2

	// CodeFailedStatusRegister2 is the same for register 2 (35h).
	CodeFailedStatusRegister2 VerifyErrorCode = 3

	// CodeFailedStatusRegister3 is the same for register 3 (15h).
	CodeFailedStatusRegister3 VerifyErrorCode = 4

	// CodeInconsistentGscvd means the GSCVD was not correctly laid out.
	CodeInconsistentGscvd VerifyErrorCode = 5

	// CodeInconsistentKeyblock means the keyblock was not correctly laid out.
	CodeInconsistentKeyblock VerifyErrorCode = 6

	// CodeInconsistentKey means the stored key was not in a valid format.
	CodeInconsistentKey VerifyErrorCode = 7

	// CodeSpiRead means a SPI read of AP flash failed.
	CodeSpiRead VerifyErrorCode = 8

	// CodeUnsupportedCryptoAlgorithm means the data uses an unsupported algorithm.
	CodeUnsupportedCryptoAlgorithm VerifyErrorCode = 9

	// CodeVersionMismatch means a structure version is unsupported.
	CodeVersionMismatch VerifyErrorCode = 10

	// CodeOutOfMemory means the reserved memory was not enough for the operation.
	CodeOutOfMemory VerifyErrorCode = 11

	// CodeInternal is a miscellaneous internal error.
	CodeInternal VerifyErrorCode = 12

	// CodeTooBig means a data structure was too large.
	CodeTooBig VerifyErrorCode = 13

	// CodeMissingGscvd means no GSCVD was present in flash.
	CodeMissingGscvd VerifyErrorCode = 14

	// CodeBoardIDMismatch means the board ID in the GSCVD is not this board's.
	CodeBoardIDMismatch VerifyErrorCode = 15

	// CodeSettingNotProvisioned means a necessary setting was missing or invalid.
	CodeSettingNotProvisioned VerifyErrorCode = 16

	// CodeNonZeroGbbFlags means verification failed solely because the GBB
	// flags are non-zero.
	CodeNonZeroGbbFlags VerifyErrorCode = 17

	// CodeWrongRootKey means the root key hash matched, but the key is no
	// longer authorized because only the MP prod key is allowed.
	CodeWrongRootKey VerifyErrorCode = 18
)

var verifyErrorCodes = enumrange.Sequential(1, 18)

var verifyErrorCodeNames = map[VerifyErrorCode]string{
	CodeFailedVerification:         "FailedVerification",
	CodeFailedStatusRegister1:      "FailedStatusRegister1",
	CodeFailedStatusRegister2:      "FailedStatusRegister2",
	CodeFailedStatusRegister3:      "FailedStatusRegister3",
	CodeInconsistentGscvd:          "InconsistentGscvd",
	CodeInconsistentKeyblock:       "InconsistentKeyblock",
	CodeInconsistentKey:            "InconsistentKey",
	CodeSpiRead:                    "SpiRead",
	CodeUnsupportedCryptoAlgorithm: "UnsupportedCryptoAlgorithm",
	CodeVersionMismatch:            "VersionMismatch",
	CodeOutOfMemory:                "OutOfMemory",
	CodeInternal:                   "Internal",
	CodeTooBig:                     "TooBig",
	CodeMissingGscvd:               "MissingGscvd",
	CodeBoardIDMismatch:            "BoardIdMismatch",
	CodeSettingNotProvisioned:      "SettingNotProvisioned",
	CodeNonZeroGbbFlags:            "NonZeroGbbFlags",
	CodeWrongRootKey:               "WrongRootKey",
}

var verifyErrorCodeDescriptions = map[VerifyErrorCode]string{
	CodeFailedVerification:         "Consistent verification data was found, but it failed cryptographic verification.",
	CodeFailedStatusRegister1:      "Failed WP status register verification on Status Register-1 (05h).",
	CodeFailedStatusRegister2:      "Failed WP status register verification on Status Register-2 (35h).",
	CodeFailedStatusRegister3:      "Failed WP status register verification on Status Register-3 (15h).",
	CodeInconsistentGscvd:          "The GSCVD wasn't correctly laid out.",
	CodeInconsistentKeyblock:       "The keyblock wasn't correctly laid out.",
	CodeInconsistentKey:            "The key stored wasn't in a valid format.",
	CodeSpiRead:                    "A SPI read operation failed while communicating with AP flash.",
	CodeUnsupportedCryptoAlgorithm: "The data uses a crypto algorithm that is unsupported.",
	CodeVersionMismatch:            "A structure version is unsupported.",
	CodeOutOfMemory:                "There was not enough reserved memory to perform the operation as requested.",
	CodeInternal:                   "A miscellaneous internal error occurred.",
	CodeTooBig:                     "A data structure was too large.",
	CodeMissingGscvd:               "There was no GSCVD present in flash.",
	CodeBoardIDMismatch:            "The Board ID for this GSCVD is not correct for this board.",
	CodeSettingNotProvisioned:      "A necessary setting was not provisioned or was invalid.",
	CodeNonZeroGbbFlags:            "Verification failed solely because the GBB flags are non-zero.",
	CodeWrongRootKey:               "The root key hash matched, but only the MP prod root key is accepted.",
}

// VerifyErrorCodeFromUint8 returns the code for v when v is in 1..=18.
func VerifyErrorCodeFromUint8(v uint8) (VerifyErrorCode, bool) {
	return enumrange.Lookup[VerifyErrorCode](verifyErrorCodes, v)
}

// VerifyErrorCodeEnd is the exclusive upper bound of defined codes.
func VerifyErrorCodeEnd() int {
	return verifyErrorCodes.End()
}

// VerifyErrorCodes returns all defined codes in ascending order.
func VerifyErrorCodes() []VerifyErrorCode {
	vals := verifyErrorCodes.Values()
	out := make([]VerifyErrorCode, len(vals))
	for i, v := range vals {
		out[i] = VerifyErrorCode(v)
	}

	return out
}

// Valid reports whether c is a defined code.
func (c VerifyErrorCode) Valid() bool {
	return verifyErrorCodes.Contains(uint8(c))
}

func (c VerifyErrorCode) String() string {
	if name, ok := verifyErrorCodeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("VerifyErrorCode(%d)", uint8(c))
}

// Description returns one sentence explaining the code.
func (c VerifyErrorCode) Description() string {
	return verifyErrorCodeDescriptions[c]
}

// HasDetail reports whether the kind carries detail bytes. Kinds without
// detail must always encode [0, 0, 0].
func (c VerifyErrorCode) HasDetail() bool {
	switch c {
	case CodeFailedVerification,
		CodeFailedStatusRegister1, CodeFailedStatusRegister2, CodeFailedStatusRegister3,
		CodeUnsupportedCryptoAlgorithm, CodeVersionMismatch, CodeInternal, CodeBoardIDMismatch:
		return true
	}

	return false
}
