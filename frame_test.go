package videoio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrameShape(t *testing.T) {
	f := NewFrame(4, 3)
	assert.Equal(t, 4, f.Width)
	assert.Equal(t, 3, f.Height)
	assert.Len(t, f.Pix, 36)
	assert.NoError(t, f.validate(4, 3))
}

func TestFramePixelAccessors(t *testing.T) {
	f := NewFrame(3, 2)
	f.SetRGB(2, 1, 10, 20, 30)
	r, g, b := f.RGB(2, 1)
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
	assert.Equal(t, uint8(30), b)
	// Last three bytes of the buffer, row-major.
	assert.Equal(t, []uint8{10, 20, 30}, f.Pix[15:])
}

func TestFrameValidate(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
	}{
		{name: "nil_frame", frame: nil},
		{name: "wrong_width", frame: NewFrame(5, 3)},
		{name: "wrong_height", frame: NewFrame(4, 2)},
		{name: "short_pix", frame: &Frame{Width: 4, Height: 3, Pix: make([]uint8, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.validate(4, 3)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestFrameFromFloatQuantization(t *testing.T) {
	samples := []float32{
		0, 0.25, 0.5,
		0.75, 1.0, 0.999,
	}
	frame, err := FrameFromFloat32(2, 1, samples)
	require.NoError(t, err)
	// Scale by 255, truncate.
	assert.Equal(t, []uint8{0, 63, 127, 191, 255, 254}, frame.Pix)
}

func TestFrameFromFloatClamps(t *testing.T) {
	frame, err := FrameFromFloat64(1, 1, []float64{-0.5, 1.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 127}, frame.Pix)
}

func TestFrameFromFloatRejectsNonFinite(t *testing.T) {
	_, err := FrameFromFloat64(1, 1, []float64{0, math.NaN(), 0})
	assert.ErrorIs(t, err, ErrUnsupportedDataType)

	_, err = FrameFromFloat64(1, 1, []float64{0, math.Inf(1), 0})
	assert.ErrorIs(t, err, ErrUnsupportedDataType)

	_, err = FrameFromFloat32(1, 1, []float32{0, float32(math.Inf(-1)), 0})
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}

func TestFrameFromFloatShapeCheck(t *testing.T) {
	_, err := FrameFromFloat32(2, 2, make([]float32, 5))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = FrameFromFloat64(2, 2, make([]float64, 13))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDepthFrameAccessors(t *testing.T) {
	f := NewDepthFrame(3, 2)
	require.Len(t, f.Samples, 6)
	f.Set(1, 1, 40000)
	assert.Equal(t, uint16(40000), f.At(1, 1))
	assert.Equal(t, uint16(40000), f.Samples[4])
	assert.NoError(t, f.validate(3, 2))
}

func TestDepthFrameValidate(t *testing.T) {
	var nilFrame *DepthFrame
	assert.ErrorIs(t, nilFrame.validate(3, 2), ErrShapeMismatch)
	assert.ErrorIs(t, NewDepthFrame(2, 2).validate(3, 2), ErrShapeMismatch)

	short := &DepthFrame{Width: 3, Height: 2, Samples: make([]uint16, 5)}
	assert.ErrorIs(t, short.validate(3, 2), ErrShapeMismatch)
}
