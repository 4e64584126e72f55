// Package videoio reads and writes video files as sequences of image
// frames, including 16-bit single-channel depth data that video codecs
// cannot natively represent.
//
// All compression and decompression is delegated to an external ffmpeg
// process driven over a byte pipe; this package owns the frame packing,
// the raw-pixel streaming protocol, and the process lifecycle. ffmpeg and
// ffprobe must be installed and on PATH.
//
// # Reading and Writing Color Video
//
// Streams are opened with a path and options, used frame by frame, and
// closed exactly once (Close is idempotent; always defer it):
//
//	w, err := videoio.NewWriter("out.mp4", 640, 480, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	frame := videoio.NewFrame(640, 480)
//	// ... fill frame.Pix with RGB bytes ...
//	if err := w.Write(frame); err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.Close(); err != nil {
//	    log.Fatal(err) // surfaces a nonzero ffmpeg exit
//	}
//
//	r, err := videoio.NewReader("out.mp4", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	for r.Next() {
//	    process(r.Frame())
//	}
//	if err := r.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// ReadAll, WriteAll, ReadAllDepth and WriteAllDepth are one-call forms for
// videos that fit in memory.
//
// # Depth Video
//
// DepthWriter and DepthReader store 16-bit depth planes in a standard
// video container by packing each sample across two channels of a 4:4:4
// pixel (see the depthcodec package) and pinning the encoder to its
// mathematically lossless mode. The round trip is value-exact:
//
//	dw, err := videoio.NewDepthWriter("depth.mp4", 640, 480, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dw.Close()
//	dw.Write(depthFrame) // *videoio.DepthFrame, uint16 samples
//
// # Seeking
//
// ReaderOptions.StartFrame seeks before the first read. The seek point is
// computed as (startFrame - 0.5) / fps, which lands exactly on the
// requested frame for constant-rate videos this package produced;
// arbitrary variable-frame-rate media may land one frame off.
//
// # Errors
//
// Failures classify with errors.Is against the package sentinels:
// ErrUnsupportedConfiguration and ErrShapeMismatch are detected before any
// process is spawned or byte is moved; ErrToolNotFound and ErrFileNotFound
// surface missing collaborators; ErrProcessFailed reports a codec process
// that exited nonzero, discovered at Close. A truncated trailing frame is
// deliberately not an error: the partial frame is dropped, the stream ends,
// and Reader.Truncated reports the fact.
package videoio
