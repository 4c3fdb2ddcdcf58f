package gpu

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/stats"
)

// nvmlBackend queries the NVIDIA management library. go-nvml dlopens
// libnvidia-ml.so at Init time and resolves every entry point by symbol
// name; a missing library, missing symbol, or failed driver init all
// surface as a non-SUCCESS Return from Init and we fall through to the
// sysfs backend instead.
type nvmlBackend struct {
	log logger.Logger

	// Last successfully read value per device index. A field that fails
	// to read on a later cycle keeps its previous value rather than being
	// reset to zero.
	cache map[int]stats.GPUStats
}

// initNVML attempts to bring up the driver backend. Returns ok=false when
// the vendor library is absent or refuses to initialize; the caller then
// selects the fallback.
func initNVML(log logger.Logger) (Backend, bool) {
	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		log.Debug("gpu: nvml init: %s", nvml.ErrorString(ret))
		return nil, false
	}
	return &nvmlBackend{log: log, cache: make(map[int]stats.GPUStats)}, true
}

func (b *nvmlBackend) Name() string       { return "nvml" }
func (b *nvmlBackend) DriverBacked() bool { return true }

// Devices queries the device count and then fetches each device's fields
// independently. A failure on any one field for one device does not abort
// collection of the remaining fields or devices.
func (b *nvmlBackend) Devices() ([]stats.GPUStats, error) {
	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		// Transient driver hiccup: report the devices we last saw rather
		// than failing the whole cycle.
		b.log.Warn("gpu: device count: %s", nvml.ErrorString(ret))
		return b.cached(), nil
	}

	devices := make([]stats.GPUStats, 0, count)
	for i := 0; i < count; i++ {
		devices = append(devices, b.readDevice(i))
	}
	return devices, nil
}

// readDevice fetches one device's fields, starting from the cached values
// so partial failures leave stale-but-plausible data instead of zeros.
func (b *nvmlBackend) readDevice(index int) stats.GPUStats {
	gpu, ok := b.cache[index]
	if !ok {
		gpu = stats.GPUStats{Index: index}
	}
	gpu.Supported = true

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		b.log.Debug("gpu %d: handle: %s", index, nvml.ErrorString(ret))
		return gpu
	}

	if name, ret := device.GetName(); ret == nvml.SUCCESS {
		gpu.Name = name
	}
	if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
		gpu.Temperature = int(temp)
	}
	if util, ret := device.GetUtilizationRates(); ret == nvml.SUCCESS {
		gpu.Utilization = float64(util.Gpu)
	}
	if mem, ret := device.GetMemoryInfo(); ret == nvml.SUCCESS {
		gpu.MemoryTotal = mem.Total
		gpu.MemoryUsed = mem.Used
		gpu.MemoryFree = mem.Free
	}
	if power, ret := device.GetPowerUsage(); ret == nvml.SUCCESS {
		gpu.PowerMilliwatts = int(power)
	} else if ret == nvml.ERROR_NO_PERMISSION {
		// Power draw needs elevated privilege on some drivers; keep the
		// last value and move on.
		b.log.Debug("gpu %d: power usage: %s", index, nvml.ErrorString(ret))
	}
	if fan, ret := device.GetFanSpeed(); ret == nvml.SUCCESS {
		gpu.FanPercent = int(fan)
	}

	b.cache[index] = gpu
	return gpu
}

// cached returns the last seen devices in index order.
func (b *nvmlBackend) cached() []stats.GPUStats {
	if len(b.cache) == 0 {
		return nil
	}
	max := -1
	for i := range b.cache {
		if i > max {
			max = i
		}
	}
	devices := make([]stats.GPUStats, 0, len(b.cache))
	for i := 0; i <= max; i++ {
		if gpu, ok := b.cache[i]; ok {
			devices = append(devices, gpu)
		}
	}
	return devices
}

func (b *nvmlBackend) Close() {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		b.log.Debug("gpu: nvml shutdown: %s", nvml.ErrorString(ret))
	}
}
