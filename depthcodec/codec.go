// Package depthcodec packs 16-bit unsigned depth samples into three 8-bit
// pixel channels so they survive a YUV 4:4:4 lossless video pipeline.
//
// Video codecs have no native 16-bit single-channel pixel format, so each
// sample is split across two of the three channels of a regular pixel. The
// low byte is reflected around 128 whenever the high byte is odd, turning
// the per-channel byte stream into a continuous zig-zag instead of a
// sawtooth that jumps 255->0 at every 256-boundary. Continuity matters when
// the packed planes pass through scaling or filtering stages: interpolation
// between neighbouring values is far less likely to drag the decoded sample
// across a high-byte boundary.
//
// The transform is a bijection over the full uint16 range. Keeping it
// lossless end to end is the job of the surrounding stream configuration
// (4:4:4 sampling, mathematically lossless quantization), not of this
// package.
//
// Example:
//
//	b0, b1, b2 := depthcodec.EncodePixel(1000)
//	sample := depthcodec.DecodePixel(b0, b1, b2)
//	// sample == 1000
package depthcodec

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrInvalidShape indicates a plane with nonpositive width or height.
var ErrInvalidShape = errors.New("invalid plane shape")

// ErrInvalidLength indicates a sample or byte slice whose length does not
// match the declared plane dimensions.
var ErrInvalidLength = errors.New("invalid plane length")

// EncodePixel maps one 16-bit sample onto three 8-bit channels.
//
// The high byte goes to b2 unchanged. The low byte goes to b0, reflected
// (255-low) when the high byte is odd. b1 is an unused plane kept at zero.
func EncodePixel(sample uint16) (b0, b1, b2 uint8) {
	high := uint8(sample >> 8)
	low := uint8(sample & 0xFF)
	if high%2 == 1 {
		low = 255 - low
	}
	return low, 0, high
}

// DecodePixel is the inverse of EncodePixel. It reconstructs the sample for
// any triple EncodePixel can produce; b1 is ignored.
func DecodePixel(b0, b1, b2 uint8) uint16 {
	low := b0
	if b2%2 == 1 {
		low = 255 - b0
	}
	return uint16(low) + uint16(b2)*256
}

// EncodePlane packs a row-major width*height sample plane into the 3-plane
// byte layout exchanged with the codec process: the reflected low bytes,
// then the zero plane, then the high bytes. The result is always
// 3*width*height bytes.
func EncodePlane(samples []uint16, width, height int) ([]byte, error) {
	if err := checkShape(width, height); err != nil {
		return nil, err
	}
	n := width * height
	if len(samples) != n {
		return nil, fmt.Errorf("%w: expected %d samples for %dx%d, got %d",
			ErrInvalidLength, n, width, height, len(samples))
	}

	packed := make([]byte, 3*n)
	low := packed[:n]
	high := packed[2*n:]
	for i, s := range samples {
		b0, _, b2 := EncodePixel(s)
		low[i] = b0
		high[i] = b2
	}

	logrus.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
		"bytes":  len(packed),
	}).Debug("Encoded depth plane")
	return packed, nil
}

// DecodePlane unpacks a 3-plane byte layout produced by EncodePlane (or
// recovered from the codec process) back into a row-major sample plane.
// The middle plane is ignored.
func DecodePlane(packed []byte, width, height int) ([]uint16, error) {
	if err := checkShape(width, height); err != nil {
		return nil, err
	}
	n := width * height
	if len(packed) != 3*n {
		return nil, fmt.Errorf("%w: expected %d bytes for %dx%d, got %d",
			ErrInvalidLength, 3*n, width, height, len(packed))
	}

	low := packed[:n]
	high := packed[2*n:]
	samples := make([]uint16, n)
	for i := range samples {
		samples[i] = DecodePixel(low[i], 0, high[i])
	}
	return samples, nil
}

// EncodePlane8 packs an 8-bit plane using the degenerate encoding: the
// sample becomes the low byte, the high byte is zero, so no reflection is
// ever applied. Decoding with DecodePlane yields samples in [0, 255].
func EncodePlane8(samples []uint8, width, height int) ([]byte, error) {
	if err := checkShape(width, height); err != nil {
		return nil, err
	}
	n := width * height
	if len(samples) != n {
		return nil, fmt.Errorf("%w: expected %d samples for %dx%d, got %d",
			ErrInvalidLength, n, width, height, len(samples))
	}

	packed := make([]byte, 3*n)
	copy(packed[:n], samples)
	return packed, nil
}

func checkShape(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidShape, width, height)
	}
	return nil
}
