package arv

import (
	"fmt"

	"github.com/andrei-cloud/go_arv/pkg/enumrange"
)

// TpmvStatus is the one-byte AP RO verification status returned over the
// TPM vendor command channel. It is numbered independently of
// VerifyErrorCode and the two must never be compared numerically.
//
// Values 34 and 35 are permanently unassigned: an older Unknown placeholder
// used both.
type TpmvStatus uint8

const (
	TpmvSuccess                    TpmvStatus = 20
	TpmvFailedVerification         TpmvStatus = 21
	TpmvInconsistentGscvd          TpmvStatus = 22
	TpmvInconsistentKeyblock       TpmvStatus = 23
	TpmvInconsistentKey            TpmvStatus = 24
	TpmvSpiRead                    TpmvStatus = 25
	TpmvUnsupportedCryptoAlgorithm TpmvStatus = 26
	TpmvVersionMismatch            TpmvStatus = 27
	TpmvOutOfMemory                TpmvStatus = 28
	TpmvInternal                   TpmvStatus = 29
	TpmvTooBig                     TpmvStatus = 30
	TpmvMissingGscvd               TpmvStatus = 31
	TpmvBoardIDMismatch            TpmvStatus = 32
	TpmvSettingNotProvisioned      TpmvStatus = 33
	TpmvNonZeroGbbFlags            TpmvStatus = 36
	TpmvWrongRootKey               TpmvStatus = 37
	TpmvUnknown                    TpmvStatus = 255
)

var tpmvStatuses = enumrange.New(
	enumrange.Range{First: 20, Last: 33},
	enumrange.Range{First: 36, Last: 37},
	enumrange.Range{First: 255, Last: 255},
)

type tpmvInfo struct {
	name  string
	short string
}

var tpmvInfos = map[TpmvStatus]tpmvInfo{
	TpmvSuccess:                    {"Success", "OK"},
	TpmvFailedVerification:         {"FailedVerification", "FAIL"},
	TpmvInconsistentGscvd:          {"InconsistentGscvd", "bad gvd"},
	TpmvInconsistentKeyblock:       {"InconsistentKeyblock", "bad keyblock"},
	TpmvInconsistentKey:            {"InconsistentKey", "bad key"},
	TpmvSpiRead:                    {"SpiRead", "spi err"},
	TpmvUnsupportedCryptoAlgorithm: {"UnsupportedCryptoAlgorithm", "bad crypto"},
	TpmvVersionMismatch:            {"VersionMismatch", "bad version"},
	TpmvOutOfMemory:                {"OutOfMemory", "oom"},
	TpmvInternal:                   {"Internal", "internal"},
	TpmvTooBig:                     {"TooBig", "too big"},
	TpmvMissingGscvd:               {"MissingGscvd", "no gvd"},
	TpmvBoardIDMismatch:            {"BoardIdMismatch", "wrong board id"},
	TpmvSettingNotProvisioned:      {"SettingNotProvisioned", "setting unprovisioned"},
	TpmvNonZeroGbbFlags:            {"NonZeroGbbFlags", "Would pass with zeroed GBB flags"},
	TpmvWrongRootKey:               {"WrongRootkey", "Only MP prod root key is accepted"},
	TpmvUnknown:                    {"Unknown", "unknown"},
}

// TpmvStatusFromUint8 returns the status for v. Undefined values, including
// the reserved 34 and 35, are rejected.
func TpmvStatusFromUint8(v uint8) (TpmvStatus, bool) {
	return enumrange.Lookup[TpmvStatus](tpmvStatuses, v)
}

// TpmvStatuses returns all defined statuses in ascending order.
func TpmvStatuses() []TpmvStatus {
	vals := tpmvStatuses.Values()
	out := make([]TpmvStatus, len(vals))
	for i, v := range vals {
		out[i] = TpmvStatus(v)
	}

	return out
}

// Name returns the identifier of the status.
func (s TpmvStatus) Name() string {
	if info, ok := tpmvInfos[s]; ok {
		return info.name
	}

	return fmt.Sprintf("TpmvStatus(%d)", uint8(s))
}

// String returns the short text reported to users, e.g. "OK" or "too big".
// Undefined values read as "unknown".
func (s TpmvStatus) String() string {
	if info, ok := tpmvInfos[s]; ok {
		return info.short
	}

	return tpmvInfos[TpmvUnknown].short
}

var tpmvByCode = map[VerifyErrorCode]TpmvStatus{
	CodeFailedVerification:         TpmvFailedVerification,
	CodeFailedStatusRegister1:      TpmvFailedVerification,
	CodeFailedStatusRegister2:      TpmvFailedVerification,
	CodeFailedStatusRegister3:      TpmvFailedVerification,
	CodeInconsistentGscvd:          TpmvInconsistentGscvd,
	CodeInconsistentKeyblock:       TpmvInconsistentKeyblock,
	CodeInconsistentKey:            TpmvInconsistentKey,
	CodeSpiRead:                    TpmvSpiRead,
	CodeUnsupportedCryptoAlgorithm: TpmvUnsupportedCryptoAlgorithm,
	CodeVersionMismatch:            TpmvVersionMismatch,
	CodeOutOfMemory:                TpmvOutOfMemory,
	CodeInternal:                   TpmvInternal,
	CodeTooBig:                     TpmvTooBig,
	CodeMissingGscvd:               TpmvMissingGscvd,
	CodeBoardIDMismatch:            TpmvBoardIDMismatch,
	CodeSettingNotProvisioned:      TpmvSettingNotProvisioned,
	CodeNonZeroGbbFlags:            TpmvNonZeroGbbFlags,
	CodeWrongRootKey:               TpmvWrongRootKey,
}

// TpmvStatusFromResult reduces a Result to the one-byte status. The status
// register failures have no status of their own and report FailedVerification.
func TpmvStatusFromResult(r Result) TpmvStatus {
	ve, failed := r.VerifyError()
	if !failed {
		return TpmvSuccess
	}
	if s, ok := tpmvByCode[ve.Code()]; ok {
		return s
	}

	return TpmvUnknown
}
