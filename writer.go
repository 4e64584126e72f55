package videoio

import (
	"fmt"
	"io"
	"strconv"

	"github.com/opd-ai/videoio/ffproc"
	"github.com/sirupsen/logrus"
)

// WriterOptions configures a video writer.
type WriterOptions struct {
	// FPS is the target frame rate. Zero leaves it to the codec process's
	// default.
	FPS float64
	// Codec selects the encoder.
	Codec Codec
	// Preset is the compression/speed tradeoff. Empty picks the codec's
	// default.
	Preset string
	// Quality is the quantization strength (-q:v). Negative leaves it to
	// the codec's default rate control.
	Quality int
	// Lossless requests mathematically lossless encoding. The codec must
	// support it; the encoded pixel format switches to the codec's
	// lossless format.
	Lossless bool
}

// NewWriterOptions returns the default writer configuration: H.264, codec
// default preset, default rate control, lossy.
func NewWriterOptions() *WriterOptions {
	return &WriterOptions{
		Codec:   CodecH264,
		Quality: -1,
	}
}

// frameSink is the writer's view of its codec process. Satisfied by
// *ffproc.Session; tests substitute stubs.
type frameSink interface {
	io.Writer
	Close() error
}

// Writer streams raw RGB frames into a spawned codec process that encodes
// them straight to the target path. Construction spawns the process; Close
// ends the stream and joins it. Use it with a deferred Close so the process
// and its pipes are released on every exit path:
//
//	w, err := videoio.NewWriter("out.mp4", 640, 480, nil)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
type Writer struct {
	path   string
	width  int
	height int
	sink   frameSink

	frames   int
	closed   bool
	closeErr error
}

// NewWriter opens a video writer for the given path and resolution. A nil
// opts uses NewWriterOptions defaults. Configuration problems are reported
// before any process is spawned.
func NewWriter(path string, width, height int, opts *WriterOptions) (*Writer, error) {
	if opts == nil {
		opts = NewWriterOptions()
	}
	cfg, err := newWriterConfig(path, width, height, PixFmtRGB24, opts)
	if err != nil {
		return nil, err
	}

	session, err := ffproc.Start(ffproc.SessionOptions{
		Args:  cfg.args(),
		Input: true,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"path":     path,
		"width":    width,
		"height":   height,
		"codec":    string(cfg.codec),
		"preset":   cfg.preset,
		"lossless": cfg.lossless,
	}).Info("Opened video writer")

	return &Writer{
		path:   path,
		width:  width,
		height: height,
		sink:   session,
	}, nil
}

// Write appends one frame to the stream. The frame must match the declared
// resolution; on a shape mismatch nothing is written. Write blocks until
// the process's input pipe accepts the bytes. A written frame cannot be
// taken back.
func (w *Writer) Write(frame *Frame) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := frame.validate(w.width, w.height); err != nil {
		return err
	}
	if _, err := w.sink.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// WriteFloat32 quantizes interleaved RGB intensities in [0, 1] and writes
// them as one frame.
func (w *Writer) WriteFloat32(samples []float32) error {
	frame, err := FrameFromFloat32(w.width, w.height, samples)
	if err != nil {
		return err
	}
	return w.Write(frame)
}

// WriteFloat64 is WriteFloat32 for float64 samples.
func (w *Writer) WriteFloat64(samples []float64) error {
	frame, err := FrameFromFloat64(w.width, w.height, samples)
	if err != nil {
		return err
	}
	return w.Write(frame)
}

// FrameCount returns the number of frames accepted so far.
func (w *Writer) FrameCount() int {
	return w.frames
}

// Close signals end-of-stream and blocks until the codec process has
// flushed the output file and exited. Idempotent; a nonzero exit surfaces
// as ErrProcessFailed on the first call and every call after it.
func (w *Writer) Close() error {
	if w.closed {
		return w.closeErr
	}
	w.closed = true
	w.closeErr = w.sink.Close()

	logrus.WithFields(logrus.Fields{
		"path":   w.path,
		"frames": w.frames,
		"error":  w.closeErr,
	}).Info("Closed video writer")
	return w.closeErr
}

// writerConfig is a validated encoder configuration plus everything needed
// to build the codec process argument list.
type writerConfig struct {
	path      string
	width     int
	height    int
	fps       float64
	codec     Codec
	preset    string
	quality   int
	lossless  bool
	rawPixFmt PixelFormat
	cap       Capability
}

func newWriterConfig(path string, width, height int, rawPixFmt PixelFormat, opts *WriterOptions) (writerConfig, error) {
	if width <= 0 || height <= 0 {
		return writerConfig{}, fmt.Errorf("%w: resolution %dx%d",
			ErrUnsupportedConfiguration, width, height)
	}
	if opts.FPS < 0 {
		return writerConfig{}, fmt.Errorf("%w: negative frame rate %v",
			ErrUnsupportedConfiguration, opts.FPS)
	}
	cap, err := checkCodecConfig(opts.Codec, opts.Preset, opts.Lossless)
	if err != nil {
		return writerConfig{}, err
	}
	preset := opts.Preset
	if preset == "" {
		preset = cap.DefaultPreset
	}
	return writerConfig{
		path:      path,
		width:     width,
		height:    height,
		fps:       opts.FPS,
		codec:     opts.Codec,
		preset:    preset,
		quality:   opts.Quality,
		lossless:  opts.Lossless,
		rawPixFmt: rawPixFmt,
		cap:       cap,
	}, nil
}

// args builds the codec process invocation: raw frames on stdin, encoded
// container at the target path.
func (c writerConfig) args() []string {
	args := []string{
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", string(c.rawPixFmt),
		"-s", fmt.Sprintf("%dx%d", c.width, c.height),
	}
	if c.fps > 0 {
		args = append(args, "-framerate", formatFPS(c.fps))
	}
	args = append(args,
		"-i", "pipe:",
		"-c:v", string(c.codec),
		"-preset", c.preset,
	)
	outPix := c.cap.LossyPixFmt
	if c.lossless {
		args = append(args, "-profile:v", c.cap.LosslessProfile, "-crf", "0")
		outPix = c.cap.LosslessPixFmt
	} else if c.quality >= 0 {
		args = append(args, "-q:v", strconv.Itoa(c.quality))
	}
	args = append(args, "-pix_fmt", string(outPix), "-y", c.path)
	return args
}

func formatFPS(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
