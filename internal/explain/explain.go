// Package explain turns AP RO verification status integers into text.
//
// Status integers come in two forms:
//
//   - a 32-bit word from arv.Result, with a VerifyError code in the top byte
//     and detail in the low 24 bits, optionally with arv.LatchSuccess set;
//   - a single arv.TpmvStatus byte from the TPM vendor command.
//
// Values that fit in one byte are read as the latter.
package explain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// Kind says how a status integer was interpreted.
type Kind int

const (
	KindTPMStatus Kind = iota
	KindSuccess
	KindExpanded
	KindUnrecognized
)

func (k Kind) String() string {
	switch k {
	case KindTPMStatus:
		return "tpm-status"
	case KindSuccess:
		return "success"
	case KindExpanded:
		return "expanded"
	case KindUnrecognized:
		return "unrecognized"
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Explanation is the decoded form of one status integer.
type Explanation struct {
	Word    uint32
	Kind    Kind
	Latched bool
	// Error is set for KindExpanded.
	Error arv.VerifyError
	// Lines is the full report in order, warnings included.
	Lines []string
	// Warnings repeats the lines flagging detail this tool did not expect.
	Warnings []string
}

func (e *Explanation) say(format string, args ...any) {
	e.Lines = append(e.Lines, fmt.Sprintf(format, args...))
}

func (e *Explanation) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.Lines = append(e.Lines, msg)
	e.Warnings = append(e.Warnings, msg)
}

// expectedLessDetail flags reserved detail bytes that are not zero.
func (e *Explanation) expectedLessDetail(detail []byte, at string) {
	e.warn("This tool expects the expanded status to have no detail in the %s,\n"+
		"but instead it has %s.\n"+
		"Consider updating this tool.", at, hexBytes(detail))
}

// Explain decodes word.
func Explain(word uint32) Explanation {
	e := Explanation{Word: word}
	e.say("Code: 0x%08x", word)

	if word <= 0xFF {
		e.Kind = KindTPMStatus
		e.say("This is likely a status code from TPM")
		text := "Unknown to this tool"
		if s, ok := arv.TpmvStatusFromUint8(uint8(word)); ok {
			text = s.String()
		}
		e.say("Description: %s", text)

		return e
	}

	if word == arv.SerializedSuccess {
		e.Kind = KindSuccess
		e.say("It is a SUCCESS status")

		return e
	}

	result, latched := arv.DecodeLatched(word)
	ve, _ := result.VerifyError()
	if ve == arv.ErrCouldNotDeserialize {
		e.Kind = KindUnrecognized
		e.say("The code is not recognized by this tool")

		return e
	}

	e.Kind = KindExpanded
	e.Latched = latched
	e.Error = ve
	e.say("This is likely an expanded error code")
	if latched {
		e.warn("THIS ERROR OCCURRED AFTER SUCCESS WAS LATCHED!")
	}

	code := ve.Code()
	e.say("Top level code: %s (%d)", code, uint8(code))
	e.say("%s", code.Description())
	e.explainDetail(code, ve.Detail())

	return e
}

func (e *Explanation) explainDetail(code arv.VerifyErrorCode, detail [3]byte) {
	switch code {
	case arv.CodeFailedVerification:
		e.explainFailedVerification(detail)
	case arv.CodeFailedStatusRegister1, arv.CodeFailedStatusRegister2, arv.CodeFailedStatusRegister3:
		e.explainStatusRegister(code, detail)
	case arv.CodeVersionMismatch:
		source, none0, none1 := detail[0], detail[1], detail[2]
		if none0 != 0 || none1 != 0 {
			e.expectedLessDetail([]byte{none0, none1}, "bottom 16 bits")
		}
		if known, ok := arv.VersionMismatchSourceFromUint8(source); ok {
			e.say("Version mismatch source: %s", known)
		} else {
			e.say("Unknown version mismatch source (%d)", source)
		}
	case arv.CodeUnsupportedCryptoAlgorithm:
		source, alg := arv.UnpackSourceCode(detail)
		e.say("An unknown crypto algorithm was encountered: %d", alg)
		if known, ok := arv.CryptoAlgorithmSourceFromUint8(source); ok {
			e.say("Location of unknown crypto algorithm: %s", known)
		} else {
			e.say("Unknown crypto algorithm location (%d)", source)
		}
	case arv.CodeInternal:
		e.explainInternal(detail)
	case arv.CodeBoardIDMismatch:
		got, expected := arv.UnpackBoardID(detail)
		e.say("There was a mismatch between the board ID in the GSCVD and on the board.")
		e.say("The detailed code carries the top 12 bits of the ID on AP flash and GSC.")
		e.say("In GSCVD: %s", boardIDNibbles(got))
		e.say("On GSC:   %s", boardIDNibbles(expected))
	default:
		if detail == [3]byte{} {
			e.say("This expanded status carries no extra detail as expected.")
		} else {
			e.expectedLessDetail(detail[:], "bottom 24 bits")
		}
	}
}

func (e *Explanation) explainFailedVerification(detail [3]byte) {
	d, hashes := arv.UnpackFailedVerification(detail)
	switch d := d.(type) {
	case arv.SignatureVerifyFail:
		e.say("Failed due to signature verification failure.")
		if loc, ok := arv.SignatureLocationFromUint8(uint8(d.Location)); ok {
			e.say("Where was the failing signature: %s", loc)
		} else {
			e.say("Unrecognized signature location (%d)", uint8(d.Location))
		}
		if detail[2] != 0 {
			e.expectedLessDetail(detail[2:], "bottom 8 bits")
		}
	case arv.DigestMismatch:
		e.say("Failed due to a digest mismatch with the contents in AP flash.")
		e.say("The firmware image this came from had %d hardcoded root key hashes.", hashes)
		if loc, ok := arv.DigestLocationFromUint8(uint8(d.Location)); ok {
			e.say("Which digest failed: %s", loc)
		} else {
			e.say("Unrecognized digest location (%d)", uint8(d.Location))
		}
		e.say("The first octet of the calculated hash: 0x%02x", d.Got)
		e.say("The first octet of the expected hash:   0x%02x", d.Expected)
	}
}

func (e *Explanation) explainStatusRegister(code arv.VerifyErrorCode, detail [3]byte) {
	reg, _ := arv.StatusRegisterForCode(code)
	d := arv.UnpackStatusRegister(detail)
	e.say("Status Register %d did not have an expected value.", uint8(reg))
	e.say("The flash chip on the system returned 0x%02x", d.Observed)
	e.say("The provisioned value is: 0x%02x", d.Expected)
	e.say("The provisioned mask is:  0x%02x", d.Mask)

	switch {
	case d.Mask == 0:
		if bad, ok := d.Problem(); ok {
			e.say("Error getting provisioned value due to it being %s", bad.String())
		} else {
			e.say("Unknown error getting provision value: %d", d.Expected)
		}
	case d.Observed&d.Mask == d.Expected&d.Mask:
		e.say("This doesn't make sense, because it should have passed.")
	default:
		e.say("It failed because 0x%02x & 0x%02x != 0x%02x & 0x%02x",
			d.Observed, d.Mask, d.Expected, d.Mask)
	}
}

var kernelErrors = map[uint16]string{
	1:  "FAIL",
	2:  "BUSY",
	3:  "ALREADY",
	4:  "OFF",
	5:  "RESERVE",
	6:  "INVAL",
	7:  "SIZE",
	8:  "CANCEL",
	9:  "NOMEM",
	10: "NOSUPPORT",
	11: "NODEVICE",
	12: "UNINSTALLED",
	13: "NOACK",
}

func (e *Explanation) explainInternal(detail [3]byte) {
	raw, code := arv.UnpackSourceCode(detail)
	source, ok := arv.InternalErrorSourceFromUint8(raw)
	if !ok {
		e.say("Unknown internal error source (%d)", raw)
		return
	}

	switch source {
	case arv.InternalKernel:
		e.say("Internal error caused by the kernel")
		if name, ok := kernelErrors[code]; ok {
			e.say("Kernel error code %d (%s)", code, name)
		} else {
			e.say("Unknown kernel error code %d", code)
		}
	case arv.InternalCrypto:
		e.say("Error caused by the crypto engine")
		e.say("Raw code: %d", int16(code))
	case arv.InternalVerifyFlashRanges:
		e.say("Error occurred while verifying flash ranges")
	case arv.InternalCouldNotDeserialize:
		e.say("A stored verification result could not be deserialized")
		if code != 0 {
			e.expectedLessDetail(detail[1:], "bottom 16 bits")
		}
	case arv.InternalRootKeyHashCount:
		e.say("The firmware was built with %d root key hashes, but %d are provisioned",
			arv.NumRootKeyHashes, code)
	}
}

// boardIDNibbles renders a 12-bit board ID prefix and its first character.
func boardIDNibbles(v uint16) string {
	s := fmt.Sprintf("%03x (first char: %s", v, escapeASCII(byte(v>>4)))
	if v == 0x5a5 {
		s += ", probably ZZCR"
	}

	return s + ")"
}

func escapeASCII(b byte) string {
	switch b {
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case '\n':
		return `\n`
	case '\\', '\'', '"':
		return `\` + string(b)
	}
	if b >= 0x20 && b < 0x7F {
		return string(b)
	}

	return fmt.Sprintf(`\x%02x`, b)
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = fmt.Sprintf("0x%02x", x)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// String renders the report, one line per entry.
func (e Explanation) String() string {
	return strings.Join(e.Lines, "\n") + "\n"
}

// WriteTo writes the report to w.
func (e Explanation) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, e.String())

	return int64(n), err
}

// ParseArg reads a status integer the way it is usually pasted: hex with a
// 0x or x prefix, decimal, negative decimal (reinterpreted as 32 bits), or
// bare hex as a last resort.
func ParseArg(arg string) (uint32, error) {
	arg = strings.TrimSpace(arg)
	if stripped, ok := strings.CutPrefix(arg, "0x"); ok {
		arg = stripped
	} else if stripped, ok := strings.CutPrefix(arg, "x"); ok {
		arg = stripped
	} else {
		if v, err := strconv.ParseUint(arg, 10, 32); err == nil {
			return uint32(v), nil
		}
		if v, err := strconv.ParseInt(arg, 10, 32); err == nil {
			return uint32(int32(v)), nil
		}
	}

	v, err := strconv.ParseUint(arg, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", arg, errorcodes.ErrInvalidArg)
	}

	return uint32(v), nil
}
