package videoio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// driPath is where Linux exposes Direct Rendering Infrastructure devices.
var driPath = "/dev/dri"

// vaapiTool is the binary used for device probing.
var vaapiTool = "ffmpeg"

// FindVAAPIDevice scans /dev/dri for a VA-API device the installed ffmpeg
// can open, and returns the first usable device path. It returns
// ErrVAAPIUnsupported when ffmpeg was built without VA-API, and
// ErrNoVAAPIDevice when no device works (or the DRI path is inaccessible).
func FindVAAPIDevice() (string, error) {
	entries, err := os.ReadDir(driPath)
	if err != nil {
		return "", fmt.Errorf("%w: no access to %s: %v", ErrNoVAAPIDevice, driPath, err)
	}

	for _, entry := range entries {
		device := filepath.Join(driPath, entry.Name())
		ok, err := probeVAAPIDevice(device)
		if err != nil {
			return "", err
		}
		if ok {
			logrus.WithFields(logrus.Fields{
				"device": device,
			}).Info("Found VA-API device")
			return device, nil
		}
	}
	return "", fmt.Errorf("%w: no usable device under %s", ErrNoVAAPIDevice, driPath)
}

// probeVAAPIDevice runs a throwaway ffmpeg invocation against the device
// and inspects the diagnostics: device creation either fails, or the
// option itself is unrecognized (ffmpeg built without VA-API).
func probeVAAPIDevice(device string) (bool, error) {
	cmd := exec.Command(vaapiTool,
		"-vaapi_device", device,
		"-f", "lavfi",
		"-i", "nullsrc=s=64x64:d=0.1",
		"-f", "null", "-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// The probe invocation is expected to exit nonzero in most
	// configurations; the diagnostics, not the exit code, carry the verdict.
	// Anything other than an exit status means the probe never ran.
	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			if errors.Is(runErr, exec.ErrNotFound) {
				return false, fmt.Errorf("%w: %q is not on PATH (install ffmpeg to probe VA-API devices)",
					ErrToolNotFound, vaapiTool)
			}
			return false, fmt.Errorf("probe %s: %w", device, runErr)
		}
	}

	diag := stderr.String()
	if strings.Contains(diag, "Unrecognized option 'vaapi_device'") {
		return false, ErrVAAPIUnsupported
	}
	if strings.Contains(diag, "Device creation failed") {
		logrus.WithFields(logrus.Fields{
			"device": device,
		}).Debug("VA-API device creation failed")
		return false, nil
	}
	return true, nil
}
