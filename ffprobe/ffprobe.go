// Package ffprobe queries a media file for its video stream parameters.
//
// It is a thin boundary around the ffprobe binary: one JSON query at stream
// construction time, no state. Width and height are reported in display
// orientation, so a rotation tag that is an odd multiple of 90 degrees swaps
// the two.
package ffprobe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/opd-ai/videoio/ffproc"
	"github.com/sirupsen/logrus"
)

// ErrToolNotFound indicates the ffprobe binary is not installed or not on
// PATH. It aliases the ffproc sentinel so callers classify a missing
// ffprobe and a missing ffmpeg the same way.
var ErrToolNotFound = ffproc.ErrToolNotFound

// ErrFileNotFound indicates the input path does not exist.
var ErrFileNotFound = errors.New("input file does not exist")

// ErrNoVideoStream indicates the file has no video stream at the requested
// index.
var ErrNoVideoStream = errors.New("no such video stream")

// VideoParams holds the probed parameters of one video stream.
type VideoParams struct {
	Width  int
	Height int
	// FPS is the average frame rate. Zero when the file does not report one.
	FPS float64
	// FrameCount is valid only when HasFrameCount is true; containers for
	// truncated or live sources often omit it.
	FrameCount    int
	HasFrameCount bool
	// Rotation is the display rotation tag in degrees, if any. Width and
	// Height already account for it.
	Rotation int
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Tags         struct {
		Rotate string `json:"rotate"`
	} `json:"tags"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

// ReadVideoParams probes the first video stream of the file at path.
func ReadVideoParams(path string) (*VideoParams, error) {
	return ReadVideoParamsStream(path, 0)
}

// ReadVideoParamsStream probes the streamNumber-th video stream of the file
// at path. Non-video streams do not count toward the index.
func ReadVideoParamsStream(path string, streamNumber int) (*VideoParams, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: install ffmpeg (which ships ffprobe) and ensure it is on PATH",
				ErrToolNotFound)
		}
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	params, err := parseProbeOutput(out, streamNumber)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"width":  params.Width,
		"height": params.Height,
		"fps":    params.FPS,
		"frames": params.FrameCount,
	}).Debug("Probed video parameters")
	return params, nil
}

func parseProbeOutput(raw []byte, streamNumber int) (*VideoParams, error) {
	var probe probeOutput
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	var videoStreams []probeStream
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			videoStreams = append(videoStreams, s)
		}
	}
	if streamNumber < 0 || streamNumber >= len(videoStreams) {
		return nil, fmt.Errorf("%w: stream %d of %d video streams",
			ErrNoVideoStream, streamNumber, len(videoStreams))
	}
	stream := videoStreams[streamNumber]

	params := &VideoParams{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    parseRational(stream.AvgFrameRate),
	}

	if stream.NbFrames != "" {
		if n, err := strconv.Atoi(stream.NbFrames); err == nil {
			params.FrameCount = n
			params.HasFrameCount = true
		}
	}

	if stream.Tags.Rotate != "" {
		if rot, err := strconv.Atoi(stream.Tags.Rotate); err == nil {
			params.Rotation = rot
			if rot%90 == 0 && rot%180 != 0 {
				params.Width, params.Height = params.Height, params.Width
			}
		}
	}

	return params, nil
}

// parseRational converts ffprobe's "num/den" frame rate notation to a
// float. A zero denominator is treated as 1, matching a plain integer rate.
func parseRational(ratio string) float64 {
	parts := strings.SplitN(strings.TrimSpace(ratio), "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0
	}
	if den == 0 {
		den = 1
	}
	return num / den
}
