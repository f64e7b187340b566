package arv

import (
	"errors"
	"fmt"
)

// DescriptorSize is the NVRAM footprint of a WriteProtectDescriptor.
const DescriptorSize = 4

// WriteProtectDescriptor is the provisioned policy for one write-protect
// status register: the bits selected by the mask must equal the expected value.
//
// Stored as [expected, ^expected, mask, ^mask].
type WriteProtectDescriptor struct {
	expected SelfCheckingByte
	mask     SelfCheckingByte
}

// NewWriteProtectDescriptor builds a valid descriptor. A zero mask matches everything.
func NewWriteProtectDescriptor(expected, mask uint8) WriteProtectDescriptor {
	return WriteProtectDescriptor{
		expected: NewSelfCheckingByte(expected),
		mask:     NewSelfCheckingByte(mask),
	}
}

// BlankWriteProtectDescriptor returns the unprovisioned, all-0xFF descriptor.
func BlankWriteProtectDescriptor() WriteProtectDescriptor {
	return DescriptorFromBytes([DescriptorSize]byte{0xFF, 0xFF, 0xFF, 0xFF})
}

// DescriptorFromBytes wraps 4 bytes read back from NVRAM. No validation is done;
// use Get to find out whether the descriptor is usable.
func DescriptorFromBytes(b [DescriptorSize]byte) WriteProtectDescriptor {
	return WriteProtectDescriptor{
		expected: SelfCheckingByteFromRaw(b[0], b[1]),
		mask:     SelfCheckingByteFromRaw(b[2], b[3]),
	}
}

// Bytes returns the NVRAM representation.
func (d WriteProtectDescriptor) Bytes() [DescriptorSize]byte {
	ev, ei := d.expected.Raw()
	mv, mi := d.mask.Raw()

	return [DescriptorSize]byte{ev, ei, mv, mi}
}

// Get returns (expected, mask) when both halves are intact. Corruption of
// either half wins over blankness.
func (d WriteProtectDescriptor) Get() (uint8, uint8, error) {
	expected, errExpected := d.expected.Get()
	mask, errMask := d.mask.Get()
	if errExpected == nil && errMask == nil {
		return expected, mask, nil
	}
	if errors.Is(errExpected, BadValueCorrupted) || errors.Is(errMask, BadValueCorrupted) {
		return 0, 0, BadValueCorrupted
	}

	return 0, 0, BadValueBlank
}

// IsBlank reports whether the descriptor has never been written.
func (d WriteProtectDescriptor) IsBlank() bool {
	return d.Bytes() == [DescriptorSize]byte{0xFF, 0xFF, 0xFF, 0xFF}
}

// IsEmptyMask reports whether the descriptor is valid and its mask is zero,
// which makes it match any register value.
func (d WriteProtectDescriptor) IsEmptyMask() bool {
	_, mask, err := d.Get()

	return err == nil && mask == 0
}

// Matches reports whether the observed register value satisfies the policy.
// An unusable descriptor never matches.
func (d WriteProtectDescriptor) Matches(observed uint8) bool {
	expected, mask, err := d.Get()
	if err != nil {
		return false
	}

	return expected&mask == observed&mask
}

func (d WriteProtectDescriptor) String() string {
	return fmt.Sprintf("%s & %s", d.expected, d.mask)
}
