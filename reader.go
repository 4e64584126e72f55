package videoio

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/opd-ai/videoio/ffprobe"
	"github.com/opd-ai/videoio/ffproc"
	"github.com/sirupsen/logrus"
)

// ReaderOptions configures a video reader.
type ReaderOptions struct {
	// StreamNumber selects which video stream of the container to read.
	StreamNumber int
	// StartFrame is the first frame to produce. Frame-accurate only for
	// videos this library wrote; arbitrary variable-frame-rate media may
	// land one frame off.
	StartFrame int
	// OutputWidth and OutputHeight force a scaling stage. Zero keeps the
	// source resolution.
	OutputWidth  int
	OutputHeight int
	// OutputFPS forces a frame-rate conversion. Setting it also forces
	// timestamp-respecting extraction: a rate-conversion filter cannot be
	// combined with raw index-based extraction.
	OutputFPS float64
	// RespectTimestamps extracts frames according to container timestamps
	// instead of reading the raw frame sequence.
	RespectTimestamps bool
}

// NewReaderOptions returns the default reader configuration: stream 0, from
// the first frame, source resolution and rate, raw extraction.
func NewReaderOptions() *ReaderOptions {
	return &ReaderOptions{}
}

// frameSource is the reader's view of its codec process. Satisfied by
// *ffproc.Session; tests substitute stubs.
type frameSource interface {
	io.Reader
	Close() error
	CloseDiscard() error
}

// Reader streams raw RGB frames out of a video file by way of a spawned
// codec process. Iterate with Next/Frame and check Err afterwards:
//
//	r, err := videoio.NewReader("in.mp4", nil)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for r.Next() {
//	    process(r.Frame())
//	}
//	if err := r.Err(); err != nil {
//	    return err
//	}
//
// The frame buffer is reused between Next calls; copy it to retain a frame.
type Reader struct {
	path   string
	params ffprobe.VideoParams
	opts   ReaderOptions

	width     int
	height    int
	respectTS bool

	core  streamCore
	frame *Frame
}

// NewReader opens a video reader. The file is probed once, up front; the
// codec process itself is spawned on the first Next call. A nil opts uses
// NewReaderOptions defaults.
func NewReader(path string, opts *ReaderOptions) (*Reader, error) {
	if opts == nil {
		opts = NewReaderOptions()
	}
	if opts.StartFrame < 0 {
		return nil, fmt.Errorf("%w: negative start frame %d",
			ErrUnsupportedConfiguration, opts.StartFrame)
	}
	if opts.OutputFPS < 0 {
		return nil, fmt.Errorf("%w: negative output frame rate %v",
			ErrUnsupportedConfiguration, opts.OutputFPS)
	}
	if (opts.OutputWidth > 0) != (opts.OutputHeight > 0) {
		return nil, fmt.Errorf("%w: output resolution %dx%d sets only one dimension",
			ErrUnsupportedConfiguration, opts.OutputWidth, opts.OutputHeight)
	}

	params, err := ffprobe.ReadVideoParamsStream(path, opts.StreamNumber)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		path:      path,
		params:    *params,
		opts:      *opts,
		width:     params.Width,
		height:    params.Height,
		respectTS: opts.RespectTimestamps || opts.OutputFPS > 0,
	}
	if opts.OutputWidth > 0 {
		r.width = opts.OutputWidth
		r.height = opts.OutputHeight
	}
	if opts.StartFrame > 0 && r.effectiveFPS() <= 0 {
		return nil, fmt.Errorf("%w: seeking to frame %d needs a frame rate, but the file reports none and no output rate is set",
			ErrUnsupportedConfiguration, opts.StartFrame)
	}

	r.frame = NewFrame(r.width, r.height)
	r.core = streamCore{
		frameSize: r.width * r.height * 3,
		spawn: func() (frameSource, error) {
			return ffproc.Start(ffproc.SessionOptions{
				Args:   r.args(),
				Output: true,
			})
		},
	}

	logrus.WithFields(logrus.Fields{
		"path":        path,
		"width":       r.width,
		"height":      r.height,
		"start_frame": opts.StartFrame,
		"length":      r.Len(),
	}).Info("Opened video reader")
	return r, nil
}

// Next advances to the next frame, spawning the codec process on first use.
// It returns false at end-of-stream or on error; distinguish the two with
// Err.
func (r *Reader) Next() bool {
	return r.core.next(r.frame.Pix)
}

// Frame returns the current frame. Valid after a true Next; reused by the
// following Next.
func (r *Reader) Frame() *Frame {
	return r.frame
}

// Read is the one-shot form of Next/Frame. It returns io.EOF when the
// stream is exhausted.
func (r *Reader) Read() (*Frame, error) {
	if r.Next() {
		return r.frame, nil
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Err returns the first error encountered while iterating. End-of-stream
// and the truncated-tail condition are not errors.
func (r *Reader) Err() error {
	return r.core.err
}

// Truncated reports whether the stream ended on a partial frame. The
// partial frame is dropped and iteration ends cleanly; callers wanting
// strictness can treat a true value as a failure themselves.
func (r *Reader) Truncated() bool {
	return r.core.truncated
}

// Len returns the number of frames this reader will produce, when the
// container reports a frame count: max(frameCount-startFrame, 0). Zero
// means unknown; truncated or unknown-length sources must not rely on it.
func (r *Reader) Len() int {
	if !r.params.HasFrameCount {
		return 0
	}
	n := r.params.FrameCount - r.opts.StartFrame
	if n < 0 {
		return 0
	}
	return n
}

// Resolution returns the output frame size.
func (r *Reader) Resolution() (width, height int) {
	return r.width, r.height
}

// FPS returns the output frame rate: the forced rate when one was
// requested, otherwise the source's probed rate. Zero when unknown.
func (r *Reader) FPS() float64 {
	if r.opts.OutputFPS > 0 {
		return r.opts.OutputFPS
	}
	return r.params.FPS
}

// Params returns the probed source parameters, before any forced scaling
// or rate conversion.
func (r *Reader) Params() ffprobe.VideoParams {
	return r.params
}

// Reset re-arms an exhausted or mid-stream reader so the next Next starts
// over from StartFrame, re-spawning the codec process.
func (r *Reader) Reset() error {
	return r.core.reset()
}

// Close tears the stream down and joins the codec process. Idempotent, and
// safe mid-iteration: a child killed by the teardown itself is not an
// error. After a complete read, a nonzero exit surfaces as
// ErrProcessFailed.
func (r *Reader) Close() error {
	return r.core.close()
}

func (r *Reader) effectiveFPS() float64 {
	if r.opts.OutputFPS > 0 {
		return r.opts.OutputFPS
	}
	return r.params.FPS
}

// seekTime computes the decode start point for StartFrame. The half-frame
// back-off biases the codec process's rounding toward landing exactly on
// the requested frame; that only holds for constant-rate media this
// library produced.
func (r *Reader) seekTime() float64 {
	return (float64(r.opts.StartFrame) - 0.5) / r.effectiveFPS()
}

func (r *Reader) args() []string {
	return readerArgs(readerConfig{
		path:      r.path,
		seek:      r.opts.StartFrame > 0,
		seekTime:  r.seekTimeOrZero(),
		scale:     r.opts.OutputWidth > 0,
		width:     r.width,
		height:    r.height,
		fps:       r.opts.OutputFPS,
		respectTS: r.respectTS,
		rawPixFmt: PixFmtRGB24,
	})
}

func (r *Reader) seekTimeOrZero() float64 {
	if r.opts.StartFrame > 0 {
		return r.seekTime()
	}
	return 0
}

// readerConfig holds everything needed to build the decode invocation.
type readerConfig struct {
	path      string
	seek      bool
	seekTime  float64
	scale     bool
	width     int
	height    int
	fps       float64
	respectTS bool
	rawPixFmt PixelFormat
}

// readerArgs builds the codec process invocation: compressed file in, raw
// frames on stdout. -nostdin keeps the read-only stream off the stdin side
// of the pipe pair entirely.
func readerArgs(c readerConfig) []string {
	args := []string{"-loglevel", "error", "-nostdin"}
	if c.seek {
		args = append(args, "-ss", strconv.FormatFloat(c.seekTime, 'f', -1, 64))
	}
	args = append(args, "-i", c.path)

	var filters []string
	if c.scale {
		filters = append(filters, fmt.Sprintf("scale=%d:%d", c.width, c.height))
	}
	if c.fps > 0 {
		filters = append(filters, "fps="+formatFPS(c.fps))
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	args = append(args, "-f", "rawvideo", "-pix_fmt", string(c.rawPixFmt))
	if !c.respectTS {
		args = append(args, "-vsync", "0")
	}
	return append(args, "pipe:")
}

// streamCore drives the fixed-size chunk reads shared by the RGB and depth
// readers, including the truncated-tail policy and close semantics.
type streamCore struct {
	frameSize int
	spawn     func() (frameSource, error)

	src       frameSource
	frames    int
	err       error
	exhausted bool
	truncated bool
	closed    bool
	closeErr  error
}

// next reads exactly one frame into dst. A zero-byte read is clean
// end-of-stream. A partial chunk is the truncated-tail condition: the
// partial frame is dropped and the stream ends, deliberately not an error.
func (c *streamCore) next(dst []byte) bool {
	if c.closed || c.exhausted || c.err != nil {
		return false
	}
	if c.src == nil {
		src, err := c.spawn()
		if err != nil {
			c.err = err
			return false
		}
		c.src = src
	}

	n, err := io.ReadFull(c.src, dst)
	switch {
	case err == nil:
		c.frames++
		return true
	case errors.Is(err, io.EOF):
		c.exhausted = true
		return false
	case errors.Is(err, io.ErrUnexpectedEOF):
		c.exhausted = true
		c.truncated = true
		logrus.WithFields(logrus.Fields{
			"frame":      c.frames,
			"got_bytes":  n,
			"frame_size": c.frameSize,
		}).Warn("Dropped partial trailing frame")
		return false
	default:
		c.err = fmt.Errorf("read frame %d: %w", c.frames, err)
		return false
	}
}

func (c *streamCore) reset() error {
	if c.closed {
		return ErrReaderClosed
	}
	if c.src != nil {
		// Mid-stream teardown; the child's exit status is ours to ignore.
		if err := c.src.CloseDiscard(); err != nil {
			return err
		}
		c.src = nil
	}
	c.frames = 0
	c.err = nil
	c.exhausted = false
	c.truncated = false
	return nil
}

func (c *streamCore) close() error {
	if c.closed {
		return c.closeErr
	}
	c.closed = true
	if c.src == nil {
		return nil
	}
	if c.exhausted {
		// The stream was fully drained; a nonzero exit is a real failure.
		c.closeErr = c.src.Close()
	} else {
		c.closeErr = c.src.CloseDiscard()
	}
	return c.closeErr
}
