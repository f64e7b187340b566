package arv

import (
	"fmt"

	"github.com/andrei-cloud/go_arv/pkg/enumrange"
)

// BadValue explains why a stored value could not be used.
type BadValue uint8

const (
	// BadValueBlank means the value was never written. This is an expected state.
	BadValueBlank BadValue = 1

	// BadValueCorrupted means the stored inverse did not match the value and
	// the storage was not blank. This is an unexpected state.
	BadValueCorrupted BadValue = 2

	// BadValueInvalid means the value was outside the valid range for its type.
	BadValueInvalid BadValue = 3
)

var badValues = enumrange.Sequential(1, 3)

// BadValueFromUint8 returns the BadValue for v, if v is a defined one.
func BadValueFromUint8(v uint8) (BadValue, bool) {
	return enumrange.Lookup[BadValue](badValues, v)
}

func (b BadValue) String() string {
	switch b {
	case BadValueBlank:
		return "Blank"
	case BadValueCorrupted:
		return "Corrupted"
	case BadValueInvalid:
		return "Invalid"
	}

	return fmt.Sprintf("BadValue(%d)", uint8(b))
}

// Error implements error so a BadValue can be returned and matched with errors.Is.
func (b BadValue) Error() string {
	return "arv: stored value is " + b.String()
}

// SelfCheckingByte is one byte stored next to its bitwise complement.
//
// Unwritten memory reads as all ones and a write can only clear bits, so a
// spurious or partial write shows up as Corrupted instead of a plausible
// weaker setting.
type SelfCheckingByte struct {
	value   uint8
	inverse uint8
}

// NewSelfCheckingByte stores v with its complement.
func NewSelfCheckingByte(v uint8) SelfCheckingByte {
	return SelfCheckingByte{value: v, inverse: ^v}
}

// SelfCheckingByteFromRaw wraps two bytes exactly as read back from storage.
func SelfCheckingByteFromRaw(value, inverse uint8) SelfCheckingByte {
	return SelfCheckingByte{value: value, inverse: inverse}
}

// Raw returns the stored (value, inverse) pair.
func (b SelfCheckingByte) Raw() (uint8, uint8) {
	return b.value, b.inverse
}

// IsBlank reports whether both bytes still hold the erased pattern.
func (b SelfCheckingByte) IsBlank() bool {
	return b.value == 0xFF && b.inverse == 0xFF
}

// Get returns the value if it is intact, or BadValueBlank / BadValueCorrupted.
func (b SelfCheckingByte) Get() (uint8, error) {
	if b.value == ^b.inverse {
		return b.value, nil
	}
	if b.IsBlank() {
		return 0, BadValueBlank
	}

	return 0, BadValueCorrupted
}

func (b SelfCheckingByte) String() string {
	v, err := b.Get()
	if err != nil {
		return err.(BadValue).String()
	}

	return fmt.Sprintf("%02x", v)
}
