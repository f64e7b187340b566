package encode

import (
	"fmt"
	"math"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

const (
	detailDigest    = 1
	detailSignature = 2
)

func byteParam(name, desc string) Param {
	return Param{Name: name, Description: desc, Min: 0, Max: 0xFF}
}

func u16Param(name, desc string) Param {
	return Param{Name: name, Description: desc, Min: 0, Max: 0xFFFF}
}

func u32Param(name, desc string) Param {
	return Param{Name: name, Description: desc, Min: 0, Max: math.MaxUint32}
}

func plain(err arv.VerifyError) func(map[string]int64) (arv.VerifyError, error) {
	return func(map[string]int64) (arv.VerifyError, error) { return err, nil }
}

func statusRegisterKind(reg arv.StatusRegister) Kind {
	code, _ := reg.Code()

	return Kind{
		Code: code,
		Params: []Param{
			byteParam("observed", "Value read from the status register"),
			byteParam("expected", "Provisioned expected value"),
			byteParam("mask", "Provisioned mask"),
		},
		build: func(v map[string]int64) (arv.VerifyError, error) {
			desc := arv.NewWriteProtectDescriptor(uint8(v["expected"]), uint8(v["mask"]))

			return arv.FailedStatusRegister(reg, uint8(v["observed"]), desc), nil
		},
	}
}

var kinds = []Kind{
	{
		Code: arv.CodeFailedVerification,
		Params: []Param{
			{
				Name:        "detail",
				Description: "What failed",
				Options: []Option{
					{detailDigest, "digest mismatch"},
					{detailSignature, "signature verification"},
				},
			},
			{
				Name:        "location",
				Description: "Digest location (1-3) or signature location (0-2)",
				Min:         0,
				Max:         3,
				Initial:     1,
			},
			byteParam("got", "First byte of the calculated digest"),
			byteParam("expected", "First byte of the expected digest"),
		},
		build: func(v map[string]int64) (arv.VerifyError, error) {
			loc := uint8(v["location"])
			if v["detail"] == detailSignature {
				if loc > uint8(arv.SignatureLocationKeyblock) {
					return arv.VerifyError{}, fmt.Errorf("%w: signature location %d", errorcodes.ErrInvalidArg, loc)
				}
				if v["got"] != 0 || v["expected"] != 0 {
					return arv.VerifyError{}, fmt.Errorf("%w: a signature failure has no digest bytes", errorcodes.ErrInvalidArg)
				}

				return arv.FailedVerification(arv.SignatureVerifyFail{Location: arv.SignatureLocation(loc)}), nil
			}
			dl, ok := arv.DigestLocationFromUint8(loc)
			if !ok {
				return arv.VerifyError{}, fmt.Errorf("%w: digest location %d", errorcodes.ErrInvalidArg, loc)
			}

			return arv.FailedVerification(arv.DigestMismatch{
				Location: dl,
				Got:      uint8(v["got"]),
				Expected: uint8(v["expected"]),
			}), nil
		},
	},
	statusRegisterKind(arv.StatusRegister1),
	statusRegisterKind(arv.StatusRegister2),
	statusRegisterKind(arv.StatusRegister3),
	{Code: arv.CodeInconsistentGscvd, build: plain(arv.ErrInconsistentGscvd)},
	{Code: arv.CodeInconsistentKeyblock, build: plain(arv.ErrInconsistentKeyblock)},
	{Code: arv.CodeInconsistentKey, build: plain(arv.ErrInconsistentKey)},
	{Code: arv.CodeSpiRead, build: plain(arv.ErrSpiRead)},
	{
		Code: arv.CodeUnsupportedCryptoAlgorithm,
		Params: []Param{
			{
				Name:        "source",
				Description: "Where the algorithm was found",
				Options: []Option{
					{int64(arv.CryptoAlgorithmGscvd), arv.CryptoAlgorithmGscvd.String()},
					{int64(arv.CryptoAlgorithmPackedKey), arv.CryptoAlgorithmPackedKey.String()},
				},
			},
			u16Param("algorithm", "Raw algorithm id"),
		},
		build: func(v map[string]int64) (arv.VerifyError, error) {
			return arv.UnsupportedCryptoAlgorithm(arv.CryptoAlgorithmSource(v["source"]), uint16(v["algorithm"])), nil
		},
	},
	{
		Code: arv.CodeVersionMismatch,
		Params: []Param{
			{
				Name:        "source",
				Description: "Structure with the unsupported version",
				Options: []Option{
					{int64(arv.VersionMismatchGscvd), arv.VersionMismatchGscvd.String()},
					{int64(arv.VersionMismatchKeyblock), arv.VersionMismatchKeyblock.String()},
				},
			},
		},
		build: func(v map[string]int64) (arv.VerifyError, error) {
			return arv.VersionMismatch(arv.VersionMismatchSource(v["source"])), nil
		},
	},
	{Code: arv.CodeOutOfMemory, build: plain(arv.ErrOutOfMemory)},
	{
		Code: arv.CodeInternal,
		Params: []Param{
			{
				Name:        "source",
				Description: "Failing subsystem",
				Options: []Option{
					{int64(arv.InternalKernel), arv.InternalKernel.String()},
					{int64(arv.InternalCrypto), arv.InternalCrypto.String()},
					{int64(arv.InternalVerifyFlashRanges), arv.InternalVerifyFlashRanges.String()},
					{int64(arv.InternalCouldNotDeserialize), arv.InternalCouldNotDeserialize.String()},
					{int64(arv.InternalRootKeyHashCount), arv.InternalRootKeyHashCount.String()},
				},
			},
			u16Param("code", "Raw 16-bit error code"),
		},
		build: func(v map[string]int64) (arv.VerifyError, error) {
			return arv.Internal(arv.InternalErrorSource(v["source"]), uint16(v["code"])), nil
		},
	},
	{Code: arv.CodeTooBig, build: plain(arv.ErrTooBig)},
	{Code: arv.CodeMissingGscvd, build: plain(arv.ErrMissingGscvd)},
	{
		Code: arv.CodeBoardIDMismatch,
		Params: []Param{
			u32Param("got", "Board ID read from the device"),
			u32Param("expected", "Board ID in the GSCVD"),
		},
		build: func(v map[string]int64) (arv.VerifyError, error) {
			return arv.BoardIDMismatch(uint32(v["got"]), uint32(v["expected"])), nil
		},
	},
	{Code: arv.CodeSettingNotProvisioned, build: plain(arv.ErrSettingNotProvisioned)},
	{Code: arv.CodeNonZeroGbbFlags, build: plain(arv.ErrNonZeroGbbFlags)},
	{Code: arv.CodeWrongRootKey, build: plain(arv.ErrWrongRootKey)},
}
