package stats

import "time"

// EntityKey is the stable logical identity of a monitored resource across
// cycles: the CPU aggregate singleton, a disk base-device name, or a
// network interface name. It is independent of enumeration order, so a
// device disappearing mid-run can never shift another device onto its
// previous counters.
type EntityKey string

// CPUKey is the singleton key for the aggregate CPU counters.
const CPUKey EntityKey = "cpu"

type cpuState struct {
	sample    CPUSample
	lastUsage float64
}

type diskState struct {
	sample     DiskIOSample
	at         time.Time
	lastReads  float64
	lastWrites float64
}

type netState struct {
	sample NetSample
	at     time.Time
	lastRx float64
	lastTx float64
}

// Engine turns cumulative kernel counters into instantaneous rates. It
// owns the previous-sample table, keyed by EntityKey. Entries are created
// on first observation and updated in place every cycle the key is seen;
// a key that disappears simply stops being read (stale entries are
// harmless and bounded by hardware limits).
//
// The engine is not safe for concurrent use; the poll loop is single
// threaded by design.
type Engine struct {
	cpu  map[EntityKey]*cpuState
	disk map[EntityKey]*diskState
	net  map[EntityKey]*netState
}

// NewEngine creates an empty rate engine.
func NewEngine() *Engine {
	return &Engine{
		cpu:  make(map[EntityKey]*cpuState),
		disk: make(map[EntityKey]*diskState),
		net:  make(map[EntityKey]*netState),
	}
}

// CPUUsage computes the busy percentage for key from the delta against the
// previously stored sample: 100 * (1 - idle_delta/total_delta).
//
// On the first observation of a key there is no delta, so the defined
// placeholder 0 is returned. A zero or negative total delta reports the
// last known value unchanged, and a counter that went backwards (device
// reset) clamps to the last known value rather than producing a negative
// or wrapped percentage. The stored sample is overwritten unconditionally
// so the next cycle always has a valid delta base.
func (e *Engine) CPUUsage(key EntityKey, sample CPUSample) float64 {
	prev, seen := e.cpu[key]
	if !seen {
		e.cpu[key] = &cpuState{sample: sample}
		return 0
	}

	usage := prev.lastUsage
	switch {
	case sample.Total < prev.sample.Total || sample.Idle < prev.sample.Idle:
		// Counter went backwards (reset); clamp rather than wrap.
		usage = 0
	case sample.Total > prev.sample.Total:
		totalDelta := sample.Total - prev.sample.Total
		idleDelta := sample.Idle - prev.sample.Idle
		if idleDelta > totalDelta {
			idleDelta = totalDelta
		}
		usage = 100 * (1 - float64(idleDelta)/float64(totalDelta))
	}
	// Total unchanged: frozen counters, keep the last known value.

	prev.sample = sample
	prev.lastUsage = usage
	return usage
}

// DiskRates computes read and write operations per second for key from
// the delta against the previous sample, normalized by elapsed monotonic
// time. First observation returns (0, 0); a counter decrease clamps that
// rate to 0; zero elapsed time repeats the last known rates.
func (e *Engine) DiskRates(key EntityKey, sample DiskIOSample, now time.Time) (reads, writes float64) {
	prev, seen := e.disk[key]
	if !seen {
		e.disk[key] = &diskState{sample: sample, at: now}
		return 0, 0
	}

	reads, writes = prev.lastReads, prev.lastWrites
	if dt := now.Sub(prev.at).Seconds(); dt > 0 {
		reads = counterRate(prev.sample.Reads, sample.Reads, dt)
		writes = counterRate(prev.sample.Writes, sample.Writes, dt)
	}

	prev.sample = sample
	prev.at = now
	prev.lastReads, prev.lastWrites = reads, writes
	return reads, writes
}

// NetRates computes receive and transmit throughput in bytes per second
// for key. Same first-observation, clamping, and zero-elapsed policies as
// DiskRates.
func (e *Engine) NetRates(key EntityKey, sample NetSample, now time.Time) (rx, tx float64) {
	prev, seen := e.net[key]
	if !seen {
		e.net[key] = &netState{sample: sample, at: now}
		return 0, 0
	}

	rx, tx = prev.lastRx, prev.lastTx
	if dt := now.Sub(prev.at).Seconds(); dt > 0 {
		rx = counterRate(prev.sample.RxBytes, sample.RxBytes, dt)
		tx = counterRate(prev.sample.TxBytes, sample.TxBytes, dt)
	}

	prev.sample = sample
	prev.at = now
	prev.lastRx, prev.lastTx = rx, tx
	return rx, tx
}

// Tracked reports whether the engine has a previous sample stored for key
// in any domain.
func (e *Engine) Tracked(key EntityKey) bool {
	if _, ok := e.cpu[key]; ok {
		return true
	}
	if _, ok := e.disk[key]; ok {
		return true
	}
	_, ok := e.net[key]
	return ok
}

// counterRate is the per-second delta of a cumulative counter, clamped to
// 0 when the counter went backwards.
func counterRate(prev, cur uint64, dt float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) / dt
}
