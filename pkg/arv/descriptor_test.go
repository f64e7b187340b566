package arv_test

import (
	"testing"

	"github.com/andrei-cloud/go_arv/pkg/arv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorBytes(t *testing.T) {
	t.Parallel()

	d := arv.NewWriteProtectDescriptor(0x80, 0x9C)
	assert.Equal(t, [4]byte{0x80, 0x7F, 0x9C, 0x63}, d.Bytes())
	assert.Equal(t, d, arv.DescriptorFromBytes(d.Bytes()))

	expected, mask, err := d.Get()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), expected)
	assert.Equal(t, uint8(0x9C), mask)
	assert.Equal(t, "80 & 9c", d.String())
}

func TestDescriptorMatches(t *testing.T) {
	t.Parallel()

	for _, mask := range []uint8{0x01, 0x02, 0x80, 0x9C, 0xF0, 0xFF} {
		for expected := 0; expected <= 0xFF; expected++ {
			d := arv.NewWriteProtectDescriptor(uint8(expected), mask)
			for observed := 0; observed <= 0xFF; observed++ {
				want := uint8(expected)&mask == uint8(observed)&mask
				if d.Matches(uint8(observed)) != want {
					t.Fatalf("expected=0x%02x mask=0x%02x observed=0x%02x: want %v",
						expected, mask, observed, want)
				}
			}
		}
	}
}

func TestDescriptorEmptyMaskAlwaysMatches(t *testing.T) {
	t.Parallel()

	d := arv.NewWriteProtectDescriptor(0xA5, 0)
	assert.True(t, d.IsEmptyMask())
	for observed := 0; observed <= 0xFF; observed++ {
		assert.True(t, d.Matches(uint8(observed)))
	}
}

func TestDescriptorBlank(t *testing.T) {
	t.Parallel()

	d := arv.BlankWriteProtectDescriptor()
	assert.True(t, d.IsBlank())
	assert.False(t, d.IsEmptyMask())
	assert.Equal(t, "Blank & Blank", d.String())

	_, _, err := d.Get()
	assert.ErrorIs(t, err, arv.BadValueBlank)

	for observed := 0; observed <= 0xFF; observed++ {
		assert.False(t, d.Matches(uint8(observed)))
	}
}

func TestDescriptorHalfStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   [4]byte
		want  error
		blank bool
	}{
		{"valid", [4]byte{0x00, 0xFF, 0x00, 0xFF}, nil, false},
		{"expected blank mask valid", [4]byte{0xFF, 0xFF, 0x80, 0x7F}, arv.BadValueBlank, false},
		{"mask blank", [4]byte{0x80, 0x7F, 0xFF, 0xFF}, arv.BadValueBlank, false},
		{"expected corrupted", [4]byte{0x80, 0x00, 0x80, 0x7F}, arv.BadValueCorrupted, false},
		{"mask corrupted, expected blank", [4]byte{0xFF, 0xFF, 0x00, 0x00}, arv.BadValueCorrupted, false},
		{"all blank", [4]byte{0xFF, 0xFF, 0xFF, 0xFF}, arv.BadValueBlank, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := arv.DescriptorFromBytes(tc.raw)
			_, _, err := d.Get()
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
				assert.False(t, d.Matches(0))
			}
			assert.Equal(t, tc.blank, d.IsBlank())
		})
	}
}
