package videoio

import (
	"fmt"
	"math"
)

// Frame is one raw RGB image: row-major, 3 bytes per pixel in R,G,B order.
// Frames are transient values owned by the caller; streams never retain
// them after a Write, and a Reader reuses its frame buffer between Next
// calls unless the caller copies it.
type Frame struct {
	Width  int
	Height int
	// Pix holds Width*Height*3 bytes.
	Pix []uint8
}

// NewFrame allocates a zeroed RGB frame.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// FrameFromFloat32 builds a frame from interleaved RGB intensities in
// [0, 1], scaled by 255 and truncated. NaN or infinite samples are rejected
// with ErrUnsupportedDataType.
func FrameFromFloat32(width, height int, samples []float32) (*Frame, error) {
	if len(samples) != width*height*3 {
		return nil, fmt.Errorf("%w: expected %d samples for %dx%d RGB, got %d",
			ErrShapeMismatch, width*height*3, width, height, len(samples))
	}
	frame := NewFrame(width, height)
	for i, v := range samples {
		b, err := quantize(float64(v))
		if err != nil {
			return nil, err
		}
		frame.Pix[i] = b
	}
	return frame, nil
}

// FrameFromFloat64 is FrameFromFloat32 for float64 samples.
func FrameFromFloat64(width, height int, samples []float64) (*Frame, error) {
	if len(samples) != width*height*3 {
		return nil, fmt.Errorf("%w: expected %d samples for %dx%d RGB, got %d",
			ErrShapeMismatch, width*height*3, width, height, len(samples))
	}
	frame := NewFrame(width, height)
	for i, v := range samples {
		b, err := quantize(v)
		if err != nil {
			return nil, err
		}
		frame.Pix[i] = b
	}
	return frame, nil
}

// quantize maps an intensity in [0, 1] to a byte by scaling and truncating.
// Values outside the range clamp; only non-finite values are errors.
func quantize(v float64) (uint8, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite float sample %v", ErrUnsupportedDataType, v)
	}
	scaled := v * 255
	if scaled <= 0 {
		return 0, nil
	}
	if scaled >= 255 {
		return 255, nil
	}
	return uint8(scaled), nil
}

// RGB returns the pixel at (x, y). No bounds checking beyond the slice's
// own.
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB sets the pixel at (x, y).
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	i := (y*f.Width + x) * 3
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// validate checks the frame against a stream's declared resolution.
func (f *Frame) validate(width, height int) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrShapeMismatch)
	}
	if f.Width != width || f.Height != height {
		return fmt.Errorf("%w: stream is %dx%d, frame is %dx%d",
			ErrShapeMismatch, width, height, f.Width, f.Height)
	}
	if len(f.Pix) != width*height*3 {
		return fmt.Errorf("%w: expected %d pixel bytes, got %d",
			ErrShapeMismatch, width*height*3, len(f.Pix))
	}
	return nil
}

// DepthFrame is one 16-bit single-channel image, row-major.
type DepthFrame struct {
	Width  int
	Height int
	// Samples holds Width*Height values.
	Samples []uint16
}

// NewDepthFrame allocates a zeroed depth frame.
func NewDepthFrame(width, height int) *DepthFrame {
	return &DepthFrame{
		Width:   width,
		Height:  height,
		Samples: make([]uint16, width*height),
	}
}

// At returns the sample at (x, y).
func (f *DepthFrame) At(x, y int) uint16 {
	return f.Samples[y*f.Width+x]
}

// Set sets the sample at (x, y).
func (f *DepthFrame) Set(x, y int, v uint16) {
	f.Samples[y*f.Width+x] = v
}

func (f *DepthFrame) validate(width, height int) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrShapeMismatch)
	}
	if f.Width != width || f.Height != height {
		return fmt.Errorf("%w: stream is %dx%d, frame is %dx%d",
			ErrShapeMismatch, width, height, f.Width, f.Height)
	}
	if len(f.Samples) != width*height {
		return fmt.Errorf("%w: expected %d samples, got %d",
			ErrShapeMismatch, width*height, len(f.Samples))
	}
	return nil
}
