package videoio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindVAAPIDeviceNoDRIPath(t *testing.T) {
	orig := driPath
	driPath = filepath.Join(t.TempDir(), "no-such-dri")
	defer func() { driPath = orig }()

	_, err := FindVAAPIDevice()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoVAAPIDevice)
}

func TestFindVAAPIDeviceEmptyDRIPath(t *testing.T) {
	orig := driPath
	driPath = t.TempDir()
	defer func() { driPath = orig }()

	_, err := FindVAAPIDevice()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoVAAPIDevice)
}

func TestFindVAAPIDeviceMissingTool(t *testing.T) {
	origDRI, origTool := driPath, vaapiTool
	driPath = t.TempDir()
	vaapiTool = "videoio-no-such-ffmpeg"
	defer func() { driPath, vaapiTool = origDRI, origTool }()

	require.NoError(t, os.WriteFile(filepath.Join(driPath, "renderD128"), nil, 0o644))

	device, err := FindVAAPIDevice()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Contains(t, err.Error(), "PATH")
	assert.Empty(t, device)
}
