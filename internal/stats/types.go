package stats

import (
	"time"

	"github.com/rileyhilliard/vitals/internal/stats/parsers"
)

// The raw sample types are defined next to the parsing that produces them
// and re-exported here so the rate engine and callers stay within this
// package's vocabulary.
type (
	CPUSample         = parsers.CPUSample
	MemoryStats       = parsers.MemoryStats
	DiskIOSample      = parsers.DiskIOSample
	InterfaceCounters = parsers.InterfaceCounters
)

// NetSample holds the cumulative byte counters used for throughput deltas.
type NetSample struct {
	RxBytes uint64
	TxBytes uint64
}

// CPUStats is the rendered CPU domain: static identity plus the usage
// percentage derived from two consecutive samples.
type CPUStats struct {
	Model   string
	Cores   int
	Usage   float64 // percent 0-100; 0 until a second sample exists
	LoadAvg [3]float64
}

// DiskStats is one mounted filesystem row plus the I/O rates of its
// backing base device. Multiple partitions of one physical disk report
// separate space rows but share the same I/O rate key.
type DiskStats struct {
	Device       string
	Mount        string
	Total        uint64
	Available    uint64
	Used         uint64
	Usage        float64
	ReadsPerSec  float64
	WritesPerSec float64
	InFlight     uint64
}

// GPUStats is a single GPU device as reported by the active backend.
// When Supported is false only Name carries meaning; the dynamic fields
// stay at their zero values.
type GPUStats struct {
	Index           int
	Name            string
	Supported       bool
	Temperature     int     // Celsius
	Utilization     float64 // percent
	MemoryTotal     uint64  // bytes
	MemoryUsed      uint64
	MemoryFree      uint64
	PowerMilliwatts int
	FanPercent      int
}

// InterfaceStats is one network interface with cumulative counters and the
// throughput rates derived from the previous cycle.
type InterfaceStats struct {
	InterfaceCounters
	RxBytesPerSec float64
	TxBytesPerSec float64
}

// HostInfo is static machine identity shown in the dashboard header.
type HostInfo struct {
	Hostname string
	OS       string
	Kernel   string
	Uptime   time.Duration
}

// Snapshot is the aggregate of all current metrics for one cycle. It is
// the sole structure crossing into the renderer and is only constructed
// after every domain has been read successfully, so it is always
// internally consistent.
type Snapshot struct {
	Taken        time.Time
	Host         HostInfo
	CPU          CPUStats
	Memory       MemoryStats
	Disks        []DiskStats
	GPUs         []GPUStats
	DriverBacked bool // true when the vendor driver backend is active
	Network      []InterfaceStats
}
