package videoio

import "fmt"

// Codec identifies a video codec by its ffmpeg encoder name.
type Codec string

const (
	// CodecH264 is the libx264 software H.264 encoder.
	CodecH264 Codec = "libx264"
)

// PixelFormat identifies a raw or encoded pixel layout.
type PixelFormat string

const (
	// PixFmtRGB24 is 8-bit interleaved RGB, the raw-frame wire format.
	PixFmtRGB24 PixelFormat = "rgb24"
	// PixFmtYUV420 is 4:2:0 chroma-subsampled YUV, the default encoded
	// format for color video.
	PixFmtYUV420 PixelFormat = "yuv420p"
	// PixFmtYUV444 is 4:4:4 YUV with no chroma subsampling, required for
	// byte-exact depth round trips.
	PixFmtYUV444 PixelFormat = "yuv444p"
)

// Capability describes what one codec supports. Call sites query the table
// instead of hard-coding preset or profile lists.
type Capability struct {
	// Lossless reports whether the codec has a mathematically lossless
	// mode.
	Lossless bool
	// Presets lists the valid compression/speed presets.
	Presets []string
	// DefaultPreset is used when the caller does not pick one.
	DefaultPreset string
	// LossyPixFmt is the encoded pixel format for regular color video.
	LossyPixFmt PixelFormat
	// LosslessPixFmt is the encoded pixel format for lossless mode.
	LosslessPixFmt PixelFormat
	// LosslessProfile is the codec profile that permits LosslessPixFmt.
	LosslessProfile string
}

var codecCapabilities = map[Codec]Capability{
	CodecH264: {
		Lossless: true,
		Presets: []string{
			"ultrafast", "superfast", "veryfast", "faster",
			"fast", "medium", "slow", "veryslow",
		},
		DefaultPreset:   "slow",
		LossyPixFmt:     PixFmtYUV420,
		LosslessPixFmt:  PixFmtYUV444,
		LosslessProfile: "high444",
	},
}

// Capability returns the codec's capability record and whether the codec is
// known at all.
func (c Codec) Capability() (Capability, bool) {
	cap, ok := codecCapabilities[c]
	return cap, ok
}

// SupportsLossless reports whether the codec has a lossless mode. Unknown
// codecs support nothing.
func (c Codec) SupportsLossless() bool {
	cap, ok := codecCapabilities[c]
	return ok && cap.Lossless
}

// ValidPreset reports whether preset is accepted by this codec.
func (c Codec) ValidPreset(preset string) bool {
	cap, ok := codecCapabilities[c]
	if !ok {
		return false
	}
	for _, p := range cap.Presets {
		if p == preset {
			return true
		}
	}
	return false
}

// checkCodecConfig validates a codec/preset/lossless combination against
// the capability table. It backs writer construction.
func checkCodecConfig(codec Codec, preset string, lossless bool) (Capability, error) {
	cap, ok := codec.Capability()
	if !ok {
		return Capability{}, fmt.Errorf("%w: unknown codec %q",
			ErrUnsupportedConfiguration, string(codec))
	}
	if preset != "" && !codec.ValidPreset(preset) {
		return Capability{}, fmt.Errorf("%w: preset %q is not supported by %s, supported presets are %v",
			ErrUnsupportedConfiguration, preset, string(codec), cap.Presets)
	}
	if lossless && !cap.Lossless {
		return Capability{}, fmt.Errorf("%w: codec %s has no lossless mode",
			ErrUnsupportedConfiguration, string(codec))
	}
	return cap, nil
}
