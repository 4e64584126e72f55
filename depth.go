package videoio

import (
	"fmt"
	"io"

	"github.com/opd-ai/videoio/depthcodec"
	"github.com/opd-ai/videoio/ffprobe"
	"github.com/opd-ai/videoio/ffproc"
	"github.com/sirupsen/logrus"
)

// DepthWriterOptions configures a depth stream writer. The pipeline itself
// is fixed (H.264, 4:4:4 sampling on both sides, mathematically lossless
// quantization): anything else breaks the byte-exact round trip, so only
// timing and encoder speed are adjustable.
type DepthWriterOptions struct {
	// FPS is the target frame rate. Zero leaves it to the codec process's
	// default.
	FPS float64
	// Preset is the compression/speed tradeoff. Empty picks the codec's
	// default.
	Preset string
}

// NewDepthWriterOptions returns the default depth writer configuration.
func NewDepthWriterOptions() *DepthWriterOptions {
	return &DepthWriterOptions{}
}

// DepthWriter streams 16-bit depth frames into a lossless video file. Each
// frame is packed by the depth channel codec into the three planes of a
// 4:4:4 pixel and fed to the codec process like any other raw frame.
type DepthWriter struct {
	path   string
	width  int
	height int
	sink   frameSink

	frames   int
	closed   bool
	closeErr error
}

// NewDepthWriter opens a depth stream writer for the given path and
// resolution. A nil opts uses defaults.
func NewDepthWriter(path string, width, height int, opts *DepthWriterOptions) (*DepthWriter, error) {
	if opts == nil {
		opts = NewDepthWriterOptions()
	}
	// The lossless requirement is asserted against the capability table
	// even though the codec is fixed; a table edit must not silently break
	// depth round trips.
	cfg, err := newWriterConfig(path, width, height, PixFmtYUV444, &WriterOptions{
		FPS:      opts.FPS,
		Codec:    CodecH264,
		Preset:   opts.Preset,
		Quality:  -1,
		Lossless: true,
	})
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
		"path":   path,
		"width":  width,
		"height": height,
		"preset": cfg.preset,
	}).Info("Opened depth writer")

	return &DepthWriter{
		path:   path,
		width:  width,
		height: height,
		sink:   session,
	}, nil
}

// Write packs one depth frame and appends it to the stream. On a shape
// mismatch nothing is written.
func (w *DepthWriter) Write(frame *DepthFrame) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := frame.validate(w.width, w.height); err != nil {
		return err
	}
	packed, err := depthcodec.EncodePlane(frame.Samples, w.width, w.height)
	if err != nil {
		return err
	}
	if _, err := w.sink.Write(packed); err != nil {
		return fmt.Errorf("write depth frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Write8 appends one 8-bit depth frame using the degenerate encoding
// (high byte zero). Reading it back yields samples in [0, 255].
func (w *DepthWriter) Write8(samples []uint8) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(samples) != w.width*w.height {
		return fmt.Errorf("%w: expected %d samples for %dx%d, got %d",
			ErrShapeMismatch, w.width*w.height, w.width, w.height, len(samples))
	}
	packed, err := depthcodec.EncodePlane8(samples, w.width, w.height)
	if err != nil {
		return err
	}
	if _, err := w.sink.Write(packed); err != nil {
		return fmt.Errorf("write depth frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// FrameCount returns the number of frames accepted so far.
func (w *DepthWriter) FrameCount() int {
	return w.frames
}

// Close signals end-of-stream and joins the codec process. Idempotent.
func (w *DepthWriter) Close() error {
	if w.closed {
		return w.closeErr
	}
	w.closed = true
	w.closeErr = w.sink.Close()

	logrus.WithFields(logrus.Fields{
		"path":   w.path,
		"frames": w.frames,
		"error":  w.closeErr,
	}).Info("Closed depth writer")
	return w.closeErr
}

// DepthReaderOptions configures a depth stream reader.
type DepthReaderOptions struct {
	// StreamNumber selects which video stream of the container to read.
	StreamNumber int
	// OutputWidth and OutputHeight force a scaling stage. Scaling
	// interpolates the packed planes and corrupts decoded samples near
	// 256-boundaries; leave zero unless that is acceptable.
	OutputWidth  int
	OutputHeight int
}

// NewDepthReaderOptions returns the default depth reader configuration.
func NewDepthReaderOptions() *DepthReaderOptions {
	return &DepthReaderOptions{}
}

// DepthReader streams 16-bit depth frames out of a video file written by a
// DepthWriter. Iteration mirrors Reader: Next/DepthFrame, then Err.
type DepthReader struct {
	path   string
	params ffprobe.VideoParams
	opts   DepthReaderOptions

	width  int
	height int

	core   streamCore
	packed []byte
	frame  *DepthFrame
}

// NewDepthReader opens a depth stream reader. The file is probed up front;
// the codec process is spawned on the first Next call.
func NewDepthReader(path string, opts *DepthReaderOptions) (*DepthReader, error) {
	if opts == nil {
		opts = NewDepthReaderOptions()
	}
	if (opts.OutputWidth > 0) != (opts.OutputHeight > 0) {
		return nil, fmt.Errorf("%w: output resolution %dx%d sets only one dimension",
			ErrUnsupportedConfiguration, opts.OutputWidth, opts.OutputHeight)
	}

	params, err := ffprobe.ReadVideoParamsStream(path, opts.StreamNumber)
	if err != nil {
		return nil, err
	}

	r := &DepthReader{
		path:   path,
		params: *params,
		opts:   *opts,
		width:  params.Width,
		height: params.Height,
	}
	if opts.OutputWidth > 0 {
		r.width = opts.OutputWidth
		r.height = opts.OutputHeight
		logrus.WithFields(logrus.Fields{
			"path":   path,
			"width":  r.width,
			"height": r.height,
		}).Warn("Scaling a depth stream interpolates packed planes and may corrupt samples")
	}

	r.packed = make([]byte, r.width*r.height*3)
	r.frame = NewDepthFrame(r.width, r.height)
	r.core = streamCore{
		frameSize: len(r.packed),
		spawn: func() (frameSource, error) {
			return ffproc.Start(ffproc.SessionOptions{
				Args: readerArgs(readerConfig{
					path:      r.path,
					scale:     r.opts.OutputWidth > 0,
					width:     r.width,
					height:    r.height,
					respectTS: true,
					rawPixFmt: PixFmtYUV444,
				}),
				Output: true,
			})
		},
	}

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"width":  r.width,
		"height": r.height,
		"length": r.Len(),
	}).Info("Opened depth reader")
	return r, nil
}

// Next advances to the next frame. False means end-of-stream or error;
// distinguish with Err.
func (r *DepthReader) Next() bool {
	if !r.core.next(r.packed) {
		return false
	}
	n := r.width * r.height
	low := r.packed[:n]
	high := r.packed[2*n:]
	for i := range r.frame.Samples {
		r.frame.Samples[i] = depthcodec.DecodePixel(low[i], 0, high[i])
	}
	return true
}

// DepthFrame returns the current frame. Valid after a true Next; reused by
// the following Next.
func (r *DepthReader) DepthFrame() *DepthFrame {
	return r.frame
}

// Read is the one-shot form of Next/DepthFrame. It returns io.EOF when the
// stream is exhausted.
func (r *DepthReader) Read() (*DepthFrame, error) {
	if r.Next() {
		return r.frame, nil
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Err returns the first error encountered while iterating.
func (r *DepthReader) Err() error {
	return r.core.err
}

// Truncated reports whether the stream ended on a partial frame.
func (r *DepthReader) Truncated() bool {
	return r.core.truncated
}

// Len returns the number of frames this reader will produce when the
// container reports a frame count; zero means unknown.
func (r *DepthReader) Len() int {
	if !r.params.HasFrameCount {
		return 0
	}
	return r.params.FrameCount
}

// Resolution returns the output frame size.
func (r *DepthReader) Resolution() (width, height int) {
	return r.width, r.height
}

// Reset re-arms the reader so the next Next starts over from the first
// frame.
func (r *DepthReader) Reset() error {
	return r.core.reset()
}

// Close tears the stream down and joins the codec process. Idempotent and
// safe mid-iteration.
func (r *DepthReader) Close() error {
	return r.core.close()
}
