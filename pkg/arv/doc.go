// Package arv encodes the outcome of AP RO verification.
//
// The outcome of the boot-time check of the application processor's read-only
// firmware is reported two ways:
//
//   - a 32-bit word built from a Result: either the reserved SerializedSuccess
//     pattern or a VerifyError packed as (code, detail0, detail1, detail2),
//     most significant byte first;
//   - a single TpmvStatus byte for the TPM vendor command channel.
//
// Provisioned write-protect policy is stored in NVRAM as
// WriteProtectDescriptor values made of SelfCheckingByte halves, so blank
// and corrupted settings can be told apart from valid ones.
//
// Numeric values of every enumeration here are persisted and must never be
// changed. New values may only be appended.
package arv
