package depthcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPixelRoundTripExhaustive verifies the encode/decode bijection over the
// entire uint16 range.
func TestPixelRoundTripExhaustive(t *testing.T) {
	for s := 0; s <= 65535; s++ {
		sample := uint16(s)
		b0, b1, b2 := EncodePixel(sample)
		got := DecodePixel(b0, b1, b2)
		if got != sample {
			t.Fatalf("round trip failed for %d: encoded (%d,%d,%d), decoded %d",
				sample, b0, b1, b2, got)
		}
	}
}

// TestPixelBoundaries pins the exact byte values at the 256-boundaries where
// the low-byte reflection kicks in.
func TestPixelBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		sample uint16
		wantB0 uint8
		wantB2 uint8
	}{
		{name: "zero", sample: 0, wantB0: 0, wantB2: 0},
		{name: "below_first_boundary", sample: 255, wantB0: 255, wantB2: 0},
		{name: "first_odd_high_byte", sample: 256, wantB0: 255, wantB2: 1},
		{name: "odd_high_byte_continues", sample: 257, wantB0: 254, wantB2: 1},
		{name: "second_even_high_byte", sample: 512, wantB0: 0, wantB2: 2},
		{name: "midpoint", sample: 32768, wantB0: 0, wantB2: 128},
		{name: "max", sample: 65535, wantB0: 0, wantB2: 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b0, b1, b2 := EncodePixel(tt.sample)
			assert.Equal(t, tt.wantB0, b0, "b0")
			assert.Equal(t, uint8(0), b1, "b1 must stay zero")
			assert.Equal(t, tt.wantB2, b2, "b2")
			assert.Equal(t, tt.sample, DecodePixel(b0, b1, b2))
		})
	}
}

// TestPixelContinuity verifies the zig-zag property: adjacent samples never
// differ by more than one in the low-coding channel.
func TestPixelContinuity(t *testing.T) {
	prev, _, _ := EncodePixel(0)
	for s := 1; s <= 65535; s++ {
		b0, _, _ := EncodePixel(uint16(s))
		diff := int(b0) - int(prev)
		if diff < -1 || diff > 1 {
			t.Fatalf("low-coding channel jumps by %d at sample %d", diff, s)
		}
		prev = b0
	}
}

// TestDecodeIgnoresMiddlePlane verifies that the reserved plane does not
// participate in decoding, so noise on it cannot corrupt samples.
func TestDecodeIgnoresMiddlePlane(t *testing.T) {
	b0, _, b2 := EncodePixel(12345)
	assert.Equal(t, uint16(12345), DecodePixel(b0, 77, b2))
	assert.Equal(t, uint16(12345), DecodePixel(b0, 255, b2))
}

func TestPlaneRoundTrip(t *testing.T) {
	const width, height = 7, 3
	samples := make([]uint16, width*height)
	values := []uint16{0, 1, 255, 256, 257, 511, 512, 32767, 32768, 65534, 65535}
	for i := range samples {
		samples[i] = values[i%len(values)]
	}

	packed, err := EncodePlane(samples, width, height)
	require.NoError(t, err)
	require.Len(t, packed, 3*width*height)

	// Reserved middle plane stays zero on the wire.
	for i, b := range packed[width*height : 2*width*height] {
		require.Zerof(t, b, "middle plane byte %d", i)
	}

	got, err := DecodePlane(packed, width, height)
	require.NoError(t, err)
	assert.Equal(t, samples, got)
}

func TestEncodePlane8(t *testing.T) {
	const width, height = 4, 2
	samples := []uint8{0, 1, 127, 128, 200, 254, 255, 42}

	packed, err := EncodePlane8(samples, width, height)
	require.NoError(t, err)
	require.Len(t, packed, 3*width*height)

	decoded, err := DecodePlane(packed, width, height)
	require.NoError(t, err)
	for i, s := range samples {
		assert.Equal(t, uint16(s), decoded[i])
	}
}

func TestPlaneShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "encode_zero_width",
			run: func() error {
				_, err := EncodePlane(make([]uint16, 0), 0, 3)
				return err
			},
			wantErr: ErrInvalidShape,
		},
		{
			name: "encode_negative_height",
			run: func() error {
				_, err := EncodePlane(make([]uint16, 6), 2, -3)
				return err
			},
			wantErr: ErrInvalidShape,
		},
		{
			name: "encode_short_samples",
			run: func() error {
				_, err := EncodePlane(make([]uint16, 5), 2, 3)
				return err
			},
			wantErr: ErrInvalidLength,
		},
		{
			name: "encode8_short_samples",
			run: func() error {
				_, err := EncodePlane8(make([]uint8, 5), 2, 3)
				return err
			},
			wantErr: ErrInvalidLength,
		},
		{
			name: "decode_short_packed",
			run: func() error {
				_, err := DecodePlane(make([]byte, 17), 2, 3)
				return err
			},
			wantErr: ErrInvalidLength,
		},
		{
			name: "decode_zero_height",
			run: func() error {
				_, err := DecodePlane(nil, 2, 0)
				return err
			},
			wantErr: ErrInvalidShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
