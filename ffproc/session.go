// Package ffproc manages an external codec process as a byte-pipe pair.
//
// A Session owns exactly one spawned process plus the pipe ends the stream
// direction needs: stdin for encoding (raw frames in, compressed file out),
// stdout for decoding (compressed file in, raw frames out). Sessions are
// never shared between streams and are closed exactly once; Close is
// idempotent and its verdict is sticky.
//
// The process's diagnostic stream is always drained into a bounded tail
// buffer so an unread stderr can never fill its pipe and stall the child.
// Callers are expected to pass -loglevel error (or equivalent) so the tail
// holds actual diagnostics rather than progress chatter.
package ffproc

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrToolNotFound indicates the external binary is not installed or not on
// PATH.
var ErrToolNotFound = errors.New("external tool not found")

// ErrProcessFailed indicates the process exited nonzero after a clean close.
var ErrProcessFailed = errors.New("external process failed")

// ErrSessionClosed indicates I/O on a session that was already closed.
var ErrSessionClosed = errors.New("session is closed")

// stderrTailSize bounds the retained diagnostic output per session.
const stderrTailSize = 4096

// SessionOptions configures a spawned codec process.
type SessionOptions struct {
	// Tool is the binary name or path. Defaults to "ffmpeg".
	Tool string
	// Args is the full argument list, in order.
	Args []string
	// Input requests ownership of the process's stdin pipe.
	Input bool
	// Output requests ownership of the process's stdout pipe.
	Output bool
}

// Session is a running external process with the pipe ends its stream owns.
type Session struct {
	tool   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr *tailBuffer

	mu       sync.Mutex
	closed   bool
	closeErr error
}

// Start spawns the process and wires the requested pipes. A missing binary
// surfaces as ErrToolNotFound with an installation hint.
func Start(opts SessionOptions) (*Session, error) {
	tool := opts.Tool
	if tool == "" {
		tool = "ffmpeg"
	}

	s := &Session{
		tool:   tool,
		cmd:    exec.Command(tool, opts.Args...),
		stderr: &tailBuffer{max: stderrTailSize},
	}
	s.cmd.Stderr = s.stderr

	var err error
	if opts.Input {
		if s.stdin, err = s.cmd.StdinPipe(); err != nil {
			return nil, fmt.Errorf("open stdin pipe: %w", err)
		}
	}
	if opts.Output {
		if s.stdout, err = s.cmd.StdoutPipe(); err != nil {
			return nil, fmt.Errorf("open stdout pipe: %w", err)
		}
	}

	if err := s.cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q is not on PATH (install ffmpeg to read or write video)",
				ErrToolNotFound, tool)
		}
		return nil, fmt.Errorf("start %s: %w", tool, err)
	}

	logrus.WithFields(logrus.Fields{
		"tool": tool,
		"pid":  s.cmd.Process.Pid,
		"args": opts.Args,
	}).Debug("Started codec process")
	return s, nil
}

// Write appends bytes to the process's stdin. It blocks until the OS pipe
// buffer accepts them, which is the stream's only backpressure mechanism.
func (s *Session) Write(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrSessionClosed
	}
	if s.stdin == nil {
		return 0, errors.New("session has no input pipe")
	}
	n, err := s.stdin.Write(p)
	if err != nil {
		// The child likely died mid-stream; attach whatever it said.
		return n, fmt.Errorf("write to %s: %w%s", s.tool, err, s.stderrSuffix())
	}
	return n, nil
}

// Read reads bytes from the process's stdout.
func (s *Session) Read(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrSessionClosed
	}
	if s.stdout == nil {
		return 0, errors.New("session has no output pipe")
	}
	return s.stdout.Read(p)
}

// ReadFull reads exactly len(p) bytes, with io.ReadFull short-read
// semantics: io.EOF on a zero-byte read, io.ErrUnexpectedEOF on a partial
// one.
func (s *Session) ReadFull(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrSessionClosed
	}
	if s.stdout == nil {
		return 0, errors.New("session has no output pipe")
	}
	return io.ReadFull(s.stdout, p)
}

// Close closes the owned pipe ends and joins the process. Closing stdin
// signals end-of-stream to an encoding child, so the join also flushes the
// output file. A nonzero exit becomes ErrProcessFailed carrying the stderr
// tail. Safe to call multiple times; later calls return the first verdict.
func (s *Session) Close() error {
	return s.close(false)
}

// CloseDiscard closes the session while tolerating a child that exits
// nonzero because the close itself tore its stream down. Readers cancelling
// mid-iteration use this: the child dies of a broken pipe by design, and
// that death is not a stream failure.
func (s *Session) CloseDiscard() error {
	return s.close(true)
}

func (s *Session) close(discard bool) error {
	s.mu.Lock()
	if s.closed {
		err := s.closeErr
		s.mu.Unlock()
		return err
	}
	s.closed = true
	s.mu.Unlock()

	if s.stdin != nil {
		s.stdin.Close()
	}
	if s.stdout != nil {
		s.stdout.Close()
	}

	waitErr := s.cmd.Wait()
	verdict := s.verdict(waitErr, discard)

	s.mu.Lock()
	s.closeErr = verdict
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"tool":    s.tool,
		"pid":     s.cmd.Process.Pid,
		"discard": discard,
		"error":   verdict,
	}).Debug("Closed codec process")
	return verdict
}

func (s *Session) verdict(waitErr error, discard bool) error {
	if waitErr == nil {
		return nil
	}
	if discard {
		logrus.WithFields(logrus.Fields{
			"tool":  s.tool,
			"cause": waitErr,
		}).Debug("Discarded process exit status on cancelled stream")
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return fmt.Errorf("%w: %s exited with code %d%s",
			ErrProcessFailed, s.tool, exitErr.ExitCode(), s.stderrSuffix())
	}
	return fmt.Errorf("join %s: %w", s.tool, waitErr)
}

// StderrTail returns the retained end of the process's diagnostic output.
func (s *Session) StderrTail() string {
	return s.stderr.String()
}

func (s *Session) stderrSuffix() string {
	tail := s.stderr.String()
	if tail == "" {
		return ""
	}
	return ": " + tail
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// tailBuffer retains the trailing max bytes written to it. exec.Cmd writes
// to it from its own copier goroutine, hence the lock.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.max {
		b.buf = b.buf[len(b.buf)-b.max:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
