package gpu

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/stats"
)

// sysfsBackend enumerates GPUs from the DRM class directory when no vendor
// driver library is available. It can establish device presence and a name
// but no live metrics, so every device it reports carries Supported=false.
type sysfsBackend struct {
	log logger.Logger

	// Root is the DRM class directory, overridable for tests.
	Root string
}

func newSysfsBackend(log logger.Logger) Backend {
	return &sysfsBackend{log: log, Root: "/sys/class/drm"}
}

func (b *sysfsBackend) Name() string       { return "sysfs" }
func (b *sysfsBackend) DriverBacked() bool { return false }

// Devices probes cardN entries under the DRM root. Entries without a
// device/vendor file are connectors or render nodes, not GPUs, and are
// skipped. An unreadable root means no GPUs, not a failure.
func (b *sysfsBackend) Devices() ([]stats.GPUStats, error) {
	entries, err := os.ReadDir(b.Root)
	if err != nil {
		b.log.Debug("gpu: sysfs probe: %v", err)
		return nil, nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !isCardDir(name) {
			continue
		}
		if _, err := os.Stat(filepath.Join(b.Root, name, "device", "vendor")); err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	devices := make([]stats.GPUStats, 0, len(names))
	for i, name := range names {
		devices = append(devices, stats.GPUStats{
			Index:     i,
			Name:      b.deviceName(name),
			Supported: false,
		})
	}
	return devices, nil
}

// isCardDir matches card0, card1, ... but not card0-HDMI-A-1 connectors.
func isCardDir(name string) bool {
	rest, ok := strings.CutPrefix(name, "card")
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

// deviceName reads the marketing name some drivers expose via the product
// attribute, falling back to a generic label.
func (b *sysfsBackend) deviceName(card string) string {
	data, err := os.ReadFile(filepath.Join(b.Root, card, "device", "product"))
	if err == nil {
		if name := strings.TrimSpace(string(data)); name != "" {
			return name
		}
	}
	return "Unknown GPU"
}

func (b *sysfsBackend) Close() {}
