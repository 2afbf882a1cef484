package inibin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpackBits(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		count    int
		want     []bool
		consumed int64
	}{
		{
			name:     "zero count reads nothing",
			data:     []byte{0xFF},
			count:    0,
			want:     []bool{},
			consumed: 0,
		},
		{
			name:     "full byte msb first",
			data:     []byte{0b10110001, 0xFF},
			count:    8,
			want:     []bool{true, false, true, true, false, false, false, true},
			consumed: 1,
		},
		{
			name:     "nine bits take one from the second byte",
			data:     []byte{0x00, 0b10000000, 0xFF},
			count:    9,
			want:     []bool{false, false, false, false, false, false, false, false, true},
			consumed: 2,
		},
		{
			name:     "partial final byte skips low bits",
			data:     []byte{0b01011111},
			count:    3,
			want:     []bool{false, true, false},
			consumed: 1,
		},
		{
			name:     "exact multiple uses every bit",
			data:     []byte{0xFF, 0x01},
			count:    16,
			want:     []bool{true, true, true, true, true, true, true, true, false, false, false, false, false, false, false, true},
			consumed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.data)
			got, err := UnpackBits(c, tt.count)
			require.NoError(t, err)
			assert.Len(t, got, tt.count)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.consumed, c.Pos())
		})
	}
}

func TestUnpackBits_ShortBuffer(t *testing.T) {
	c := NewCursor([]byte{0xFF})
	_, err := UnpackBits(c, 9)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	assert.Equal(t, int64(0), c.Pos())
}

func TestUnpackBits_CursorUsableAfter(t *testing.T) {
	c := NewCursor([]byte{0b11000000, 0x2A})
	bits, err := UnpackBits(c, 2)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, bits)

	v, err := c.ReadScalar(KindU8)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x2A), v)
}
