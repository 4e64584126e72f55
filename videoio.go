package videoio

import "fmt"

// ReadAll reads every frame of a video into memory. Prefer a Reader for
// long videos; a raw RGB frame is Width*Height*3 bytes.
func ReadAll(path string, opts *ReaderOptions) ([]*Frame, error) {
	r, err := NewReader(path, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var frames []*Frame
	for r.Next() {
		frame := NewFrame(r.width, r.height)
		copy(frame.Pix, r.Frame().Pix)
		frames = append(frames, frame)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return frames, nil
}

// WriteAll encodes a frame sequence to a video file in one call.
func WriteAll(path string, frames []*Frame, opts *WriterOptions) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames to write", ErrUnsupportedConfiguration)
	}
	w, err := NewWriter(path, frames[0].Width, frames[0].Height, opts)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, frame := range frames {
		if err := w.Write(frame); err != nil {
			return err
		}
	}
	return w.Close()
}

// ReadAllDepth reads every frame of a depth video into memory.
func ReadAllDepth(path string, opts *DepthReaderOptions) ([]*DepthFrame, error) {
	r, err := NewDepthReader(path, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var frames []*DepthFrame
	for r.Next() {
		frame := NewDepthFrame(r.width, r.height)
		copy(frame.Samples, r.DepthFrame().Samples)
		frames = append(frames, frame)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return frames, nil
}

// WriteAllDepth encodes a depth frame sequence to a lossless video file in
// one call.
func WriteAllDepth(path string, frames []*DepthFrame, opts *DepthWriterOptions) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames to write", ErrUnsupportedConfiguration)
	}
	w, err := NewDepthWriter(path, frames[0].Width, frames[0].Height, opts)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, frame := range frames {
		if err := w.Write(frame); err != nil {
			return err
		}
	}
	return w.Close()
}
