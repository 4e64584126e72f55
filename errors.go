package videoio

import (
	"errors"

	"github.com/opd-ai/videoio/ffprobe"
	"github.com/opd-ai/videoio/ffproc"
)

// Sentinel errors for stream configuration and use. Classify with
// errors.Is; wrapped messages carry the offending values.

var (
	// ErrUnsupportedConfiguration indicates an invalid codec, preset,
	// lossless flag or parameter combination. Detected before any process
	// is spawned.
	ErrUnsupportedConfiguration = errors.New("unsupported stream configuration")

	// ErrShapeMismatch indicates a frame whose dimensions or channel count
	// disagree with the stream's declared resolution. Detected before any
	// byte reaches the codec process.
	ErrShapeMismatch = errors.New("frame shape mismatch")

	// ErrUnsupportedDataType indicates floating-point samples outside the
	// representable [0, 1] intensity range (NaN or infinite).
	ErrUnsupportedDataType = errors.New("unsupported sample data type")

	// ErrWriterClosed indicates a write on a closed writer.
	ErrWriterClosed = errors.New("writer is closed")

	// ErrReaderClosed indicates a read on a closed reader.
	ErrReaderClosed = errors.New("reader is closed")

	// ErrNoVAAPIDevice indicates no usable VA-API device was found.
	ErrNoVAAPIDevice = errors.New("no VA-API device available")

	// ErrVAAPIUnsupported indicates the installed ffmpeg was built without
	// VA-API support.
	ErrVAAPIUnsupported = errors.New("ffmpeg binary does not support VA-API")
)

// Collaborator errors re-exported so callers only need this package for
// classification.
var (
	// ErrFileNotFound indicates a missing input path.
	ErrFileNotFound = ffprobe.ErrFileNotFound

	// ErrToolNotFound indicates a missing ffmpeg or ffprobe binary.
	ErrToolNotFound = ffproc.ErrToolNotFound

	// ErrProcessFailed indicates the codec process exited nonzero after a
	// clean close.
	ErrProcessFailed = ffproc.ErrProcessFailed
)
