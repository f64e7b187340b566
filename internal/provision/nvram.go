package provision

import (
	"fmt"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// ImageSize is the length of the write-protect NVRAM area: one descriptor
// per status register.
const ImageSize = 3 * arv.DescriptorSize

// Image lays out descriptors for SR1, SR2 and SR3 back to back.
func Image(descs [3]arv.WriteProtectDescriptor) [ImageSize]byte {
	var out [ImageSize]byte
	for i, d := range descs {
		b := d.Bytes()
		copy(out[i*arv.DescriptorSize:], b[:])
	}

	return out
}

// Image returns the NVRAM image of the policy.
func (p *Policy) Image() [ImageSize]byte {
	return Image(p.Descriptors())
}

// ParseImage splits an NVRAM image into its three descriptors. The
// descriptors themselves are not validated; blank or corrupted ones are
// reported when checked.
func ParseImage(b []byte) ([3]arv.WriteProtectDescriptor, error) {
	var descs [3]arv.WriteProtectDescriptor
	if len(b) != ImageSize {
		return descs, fmt.Errorf("%w: got %d bytes, want %d", errorcodes.ErrInvalidNVRAM, len(b), ImageSize)
	}
	for i := range descs {
		var raw [arv.DescriptorSize]byte
		copy(raw[:], b[i*arv.DescriptorSize:])
		descs[i] = arv.DescriptorFromBytes(raw)
	}

	return descs, nil
}

var registers = [3]arv.StatusRegister{arv.StatusRegister1, arv.StatusRegister2, arv.StatusRegister3}

// CheckRegisters compares observed status register values against the
// provisioned descriptors in register order. With nothing provisioned the
// result is SettingNotProvisioned. Otherwise the first register that does
// not match, or whose descriptor is blank or corrupted, fails the check.
func CheckRegisters(descs [3]arv.WriteProtectDescriptor, observed [3]byte) arv.Result {
	if descs[0].IsBlank() && descs[1].IsBlank() && descs[2].IsBlank() {
		return arv.Failure(arv.ErrSettingNotProvisioned)
	}
	for i, d := range descs {
		if !d.Matches(observed[i]) {
			return arv.Failure(arv.FailedStatusRegister(registers[i], observed[i], d))
		}
	}

	return arv.Success()
}
