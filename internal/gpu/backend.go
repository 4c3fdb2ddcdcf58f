// Package gpu supplies GPU metrics through one of two interchangeable
// backends: a vendor-driver interface loaded dynamically (NVML) and a
// degraded sysfs probe that can only report device identity. The backend
// is selected once at process start and never re-selected mid-run; the
// two variants are mutually exclusive, never merged.
package gpu

import (
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/stats"
)

// Backend is the uniform face of a GPU metrics source.
type Backend interface {
	// Name identifies the backend ("nvml", "sysfs", "off").
	Name() string

	// DriverBacked reports whether full metrics are available. When false,
	// devices carry identity only and their Supported flag is false.
	DriverBacked() bool

	// Devices returns current per-device statistics. Per-field read
	// failures are absorbed: a field that fails keeps its last value and
	// the remaining fields and devices are still collected.
	Devices() ([]stats.GPUStats, error)

	// Close releases driver resources. Safe to call once at shutdown.
	Close()
}

// Detect selects the backend for this process lifetime: the NVML driver
// interface when the vendor library loads, initializes, and resolves every
// required entry point, otherwise the sysfs fallback. Driver absence is an
// expected condition, never a fatal error.
func Detect(log logger.Logger) Backend {
	if b, ok := initNVML(log); ok {
		log.Debug("gpu: using NVML driver backend")
		return b
	}
	log.Debug("gpu: NVML unavailable, using sysfs fallback")
	return newSysfsBackend(log)
}

// Disabled returns a backend that reports no devices, for configurations
// with GPU monitoring turned off.
func Disabled() Backend {
	return disabledBackend{}
}

type disabledBackend struct{}

func (disabledBackend) Name() string                       { return "off" }
func (disabledBackend) DriverBacked() bool                 { return false }
func (disabledBackend) Devices() ([]stats.GPUStats, error) { return nil, nil }
func (disabledBackend) Close()                             {}
