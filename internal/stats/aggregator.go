package stats

import (
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/rileyhilliard/vitals/internal/logger"
)

// GPUSource is the slice of the GPU backend the aggregator needs. The
// concrete backends live in the gpu package; accepting the interface here
// keeps the dependency pointing one way.
type GPUSource interface {
	DriverBacked() bool
	Devices() ([]GPUStats, error)
}

// Aggregator assembles one complete Snapshot per polling cycle. Domains
// are collected in a fixed order (CPU, memory, disk, GPU, network) and the
// snapshot exists only if every domain succeeds: a failure anywhere aborts
// the cycle and the caller keeps displaying the previous snapshot.
//
// Rate-engine state for domains collected before the failure point still
// advances, so the cycle after a transient failure has fresh delta bases
// rather than one inflated interval.
type Aggregator struct {
	src    *Source
	engine *Engine
	gpu    GPUSource
	log    logger.Logger

	mounts MountLister
	space  SpaceFunc
	now    func() time.Time

	// Read once and reused: the model string and host identity do not
	// change within a process lifetime.
	cpuModel string
	hostInfo *HostInfo
}

// NewAggregator wires an aggregator against the live system.
func NewAggregator(src *Source, engine *Engine, gpu GPUSource, log logger.Logger) *Aggregator {
	return &Aggregator{
		src:    src,
		engine: engine,
		gpu:    gpu,
		log:    log,
		mounts: SystemMounts,
		space:  MountSpace,
		now:    time.Now,
	}
}

// Update runs one collection cycle and returns the assembled snapshot, or
// an error and no snapshot if any domain failed.
func (a *Aggregator) Update() (*Snapshot, error) {
	now := a.now()

	cpu, err := a.collectCPU()
	if err != nil {
		return nil, err
	}
	mem, err := a.src.Memory()
	if err != nil {
		return nil, err
	}
	disks, err := a.collectDisks(now)
	if err != nil {
		return nil, err
	}
	gpus, err := a.gpu.Devices()
	if err != nil {
		return nil, err
	}
	network, err := a.collectNetwork(now)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Taken:        now,
		Host:         a.host(),
		CPU:          cpu,
		Memory:       mem,
		Disks:        disks,
		GPUs:         gpus,
		DriverBacked: a.gpu.DriverBacked(),
		Network:      network,
	}, nil
}

func (a *Aggregator) collectCPU() (CPUStats, error) {
	sample, cores, err := a.src.CPU()
	if err != nil {
		return CPUStats{}, err
	}
	load, err := a.src.LoadAvg()
	if err != nil {
		return CPUStats{}, err
	}

	if a.cpuModel == "" {
		model, err := a.src.CPUModel()
		if err != nil {
			// Cosmetic field: a kernel without /proc/cpuinfo model lines
			// (some ARM boards) should not kill monitoring.
			a.log.Debug("cpu model unavailable: %v", err)
			model = "Unknown CPU"
		}
		a.cpuModel = model
	}

	return CPUStats{
		Model:   a.cpuModel,
		Cores:   cores,
		Usage:   a.engine.CPUUsage(CPUKey, sample),
		LoadAvg: load,
	}, nil
}

// collectDisks joins the mount table with the per-device I/O counters.
// Rates are computed once per base device even when several partitions of
// it are mounted, so the rate engine sees each key exactly once per cycle.
func (a *Aggregator) collectDisks(now time.Time) ([]DiskStats, error) {
	mounts, err := a.mounts()
	if err != nil {
		return nil, err
	}
	io, err := a.src.DiskIO()
	if err != nil {
		return nil, err
	}

	type rates struct{ reads, writes float64 }
	seen := make(map[EntityKey]rates)

	var disks []DiskStats
	for _, m := range mounts {
		device := strings.TrimPrefix(m.Device, "/dev/")
		if IsVirtualDisk(device) {
			continue
		}
		key := BaseDiskKey(device)

		usage, err := a.space(m.Point)
		if err != nil {
			// One unreadable mount (stale NFS, fuse without access) drops
			// its row, not the cycle.
			a.log.Warn("disk %s: space: %v", m.Point, err)
			continue
		}

		sample, tracked := lookupDiskIO(io, key, device)

		r, ok := seen[key]
		if !ok {
			if tracked {
				r.reads, r.writes = a.engine.DiskRates(key, sample, now)
			}
			seen[key] = r
		}

		var inFlight uint64
		if tracked {
			inFlight = sample.InFlight
		}

		pct := 0.0
		if usage.Total > 0 {
			pct = 100 * float64(usage.Used) / float64(usage.Total)
		}
		disks = append(disks, DiskStats{
			Device:       string(key),
			Mount:        m.Point,
			Total:        usage.Total,
			Available:    usage.Available,
			Used:         usage.Used,
			Usage:        pct,
			ReadsPerSec:  r.reads,
			WritesPerSec: r.writes,
			InFlight:     inFlight,
		})
	}
	return disks, nil
}

// lookupDiskIO finds the /proc/diskstats row backing a mounted device. The
// rate key for nvme0n1p1 is "nvme0n1p", a name the kernel never reports, so
// a miss on the key falls back to the whole-disk row (partition suffix
// dropped) and then to the partition's own row.
func lookupDiskIO(io map[string]DiskIOSample, key EntityKey, device string) (DiskIOSample, bool) {
	if sample, ok := io[string(key)]; ok {
		return sample, true
	}
	if base, found := strings.CutSuffix(string(key), "p"); found {
		if sample, ok := io[base]; ok {
			return sample, true
		}
	}
	sample, ok := io[device]
	return sample, ok
}

func (a *Aggregator) collectNetwork(now time.Time) ([]InterfaceStats, error) {
	counters, err := a.src.NetDev()
	if err != nil {
		return nil, err
	}

	interfaces := make([]InterfaceStats, 0, len(counters))
	for _, c := range counters {
		rx, tx := a.engine.NetRates(InterfaceKey(c.Name), NetSample{
			RxBytes: c.RxBytes,
			TxBytes: c.TxBytes,
		}, now)
		interfaces = append(interfaces, InterfaceStats{
			InterfaceCounters: c,
			RxBytesPerSec:     rx,
			TxBytesPerSec:     tx,
		})
	}
	return interfaces, nil
}

// host returns cached host identity, fetching it on first use. Identity is
// decoration on the header line; failure leaves it blank.
func (a *Aggregator) host() HostInfo {
	if a.hostInfo == nil {
		info := HostInfo{}
		if hi, err := host.Info(); err == nil {
			info = HostInfo{
				Hostname: hi.Hostname,
				OS:       hi.Platform,
				Kernel:   hi.KernelVersion,
				Uptime:   time.Duration(hi.Uptime) * time.Second,
			}
		} else {
			a.log.Debug("host info unavailable: %v", err)
		}
		a.hostInfo = &info
	}
	// Uptime advances even when the rest of the identity is cached.
	h := *a.hostInfo
	if h.Hostname != "" {
		if up, err := host.Uptime(); err == nil {
			h.Uptime = time.Duration(up) * time.Second
		}
	}
	return h
}
