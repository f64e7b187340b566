package arv_test

import (
	"errors"
	"testing"

	"github.com/andrei-cloud/go_arv/pkg/arv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfCheckingByteRoundTrip(t *testing.T) {
	t.Parallel()

	for v := 0; v <= 0xFF; v++ {
		b := arv.NewSelfCheckingByte(uint8(v))
		got, err := b.Get()
		require.NoError(t, err, "value 0x%02x", v)
		assert.Equal(t, uint8(v), got)
		assert.False(t, b.IsBlank())

		value, inverse := b.Raw()
		assert.Equal(t, uint8(v), value)
		assert.Equal(t, ^uint8(v), inverse)
	}
}

func TestSelfCheckingByteStates(t *testing.T) {
	t.Parallel()

	for value := 0; value <= 0xFF; value++ {
		for inverse := 0; inverse <= 0xFF; inverse++ {
			b := arv.SelfCheckingByteFromRaw(uint8(value), uint8(inverse))
			_, err := b.Get()
			switch {
			case uint8(value) == ^uint8(inverse):
				assert.NoError(t, err)
			case value == 0xFF && inverse == 0xFF:
				assert.ErrorIs(t, err, arv.BadValueBlank)
				assert.True(t, b.IsBlank())
			default:
				if !errors.Is(err, arv.BadValueCorrupted) {
					t.Fatalf("(0x%02x, 0x%02x): expected Corrupted, got %v", value, inverse, err)
				}
			}
		}
	}
}

func TestSelfCheckingByteString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5a", arv.NewSelfCheckingByte(0x5A).String())
	assert.Equal(t, "Blank", arv.SelfCheckingByteFromRaw(0xFF, 0xFF).String())
	assert.Equal(t, "Corrupted", arv.SelfCheckingByteFromRaw(0x00, 0x00).String())
}

func TestBadValue(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		raw  uint8
		want arv.BadValue
		ok   bool
	}{
		{0, 0, false},
		{1, arv.BadValueBlank, true},
		{2, arv.BadValueCorrupted, true},
		{3, arv.BadValueInvalid, true},
		{4, 0, false},
	} {
		got, ok := arv.BadValueFromUint8(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw %d", tc.raw)
		assert.Equal(t, tc.want, got, "raw %d", tc.raw)
	}

	assert.Equal(t, "arv: stored value is Corrupted", arv.BadValueCorrupted.Error())
	assert.Equal(t, "BadValue(9)", arv.BadValue(9).String())
}
