package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountSpace(t *testing.T) {
	usage, err := MountSpace(t.TempDir())
	require.NoError(t, err)

	assert.NotZero(t, usage.Total)
	assert.LessOrEqual(t, usage.Used, usage.Total)
	assert.LessOrEqual(t, usage.Available, usage.Total)
}

func TestMountSpace_MissingPath(t *testing.T) {
	_, err := MountSpace("/definitely/not/a/mountpoint")
	assert.Error(t, err)
}

func TestSystemMounts(t *testing.T) {
	mounts, err := SystemMounts()
	require.NoError(t, err)

	// Whatever the machine reports, pseudo filesystems must be gone.
	for _, m := range mounts {
		assert.True(t, len(m.Device) > 5 && m.Device[:5] == "/dev/",
			"unexpected non-device mount %q", m.Device)
		assert.NotEmpty(t, m.Point)
	}
}
