// Package parsers implements the text parsing for the Linux kernel files
// the collector consumes. Every function is a pure function of its input
// string so the parsers can be tested against captured file contents.
package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// CPUSample holds cumulative jiffie counters read from /proc/stat at one
// instant. Idle includes idle+iowait; Total includes user, nice, system,
// idle, iowait, irq, softirq, and steal (guest time is excluded, matching
// the kernel's accounting of guest inside user).
type CPUSample struct {
	Idle  uint64
	Total uint64
}

// MemoryStats captures RAM and swap usage in bytes, computed from a single
// /proc/meminfo snapshot. No deltas involved.
type MemoryStats struct {
	Total     uint64
	Free      uint64
	Available uint64
	Buffers   uint64
	Cached    uint64 // Cached + SReclaimable - Shmem
	Used      uint64 // Total - Free - Buffers - Cached
	Usage     float64
	SwapTotal uint64
	SwapFree  uint64
	SwapUsage float64
}

// DiskIOSample holds cumulative per-device I/O counters from /proc/diskstats.
type DiskIOSample struct {
	Reads    uint64
	Writes   uint64
	InFlight uint64
}

// InterfaceCounters is one row of /proc/net/dev: cumulative traffic,
// packet, error, and drop counters for a single interface.
type InterfaceCounters struct {
	Name      string
	RxBytes   uint64
	RxPackets uint64
	RxErrors  uint64
	RxDrops   uint64
	TxBytes   uint64
	TxPackets uint64
	TxErrors  uint64
	TxDrops   uint64
}

// ParseCPUStat parses the aggregate "cpu" line of /proc/stat into a
// cumulative sample and counts the per-core "cpuN" lines.
//
// Fields: cpu user nice system idle iowait irq softirq steal guest guest_nice.
// Idle is idle+iowait; Total sums the first eight fields (guest time is
// already accounted inside user).
func ParseCPUStat(procStat string) (CPUSample, int, error) {
	var sample CPUSample
	cores := 0
	found := false

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()

		// Count individual CPU cores (cpu0, cpu1, etc.)
		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			cores++
			continue
		}

		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 9 {
			return CPUSample{}, 0, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		// user nice system idle iowait irq softirq steal
		vals := make([]uint64, 8)
		for i := 0; i < 8; i++ {
			v, err := strconv.ParseUint(fields[i+1], 10, 64)
			if err != nil {
				return CPUSample{}, 0, fmt.Errorf("failed to parse cpu field %d: %w", i+1, err)
			}
			vals[i] = v
		}

		sample.Idle = vals[3] + vals[4]
		for _, v := range vals {
			sample.Total += v
		}
		found = true
	}

	if err := scanner.Err(); err != nil {
		return CPUSample{}, 0, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return CPUSample{}, 0, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}

	return sample, cores, nil
}

// ParseCPUModel extracts the first "model name" value from /proc/cpuinfo.
func ParseCPUModel(procCPUInfo string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(procCPUInfo))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		return strings.TrimSpace(value), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error scanning /proc/cpuinfo: %w", err)
	}
	return "", fmt.Errorf("no model name in /proc/cpuinfo")
}

// ParseLoadAvg parses the three load averages from /proc/loadavg.
func ParseLoadAvg(procLoadavg string) ([3]float64, error) {
	var load [3]float64
	fields := strings.Fields(strings.TrimSpace(procLoadavg))
	if len(fields) < 3 {
		return load, fmt.Errorf("invalid /proc/loadavg: %q", procLoadavg)
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		load[i] = val
	}
	return load, nil
}

// ParseMemInfo parses /proc/meminfo into MemoryStats. Values in the file
// are kilobytes; the result is bytes. Cache is Cached + SReclaimable -
// Shmem, and Used excludes cache and buffers, matching what free(1) calls
// "used".
func ParseMemInfo(procMeminfo string) (MemoryStats, error) {
	fields := map[string]uint64{}

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		key := strings.TrimSuffix(parts[0], ":")
		val, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}
		fields[key] = val * 1024
	}
	if err := scanner.Err(); err != nil {
		return MemoryStats{}, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}

	total := fields["MemTotal"]
	if total == 0 {
		return MemoryStats{}, fmt.Errorf("no MemTotal in /proc/meminfo")
	}

	m := MemoryStats{
		Total:     total,
		Free:      fields["MemFree"],
		Available: fields["MemAvailable"],
		Buffers:   fields["Buffers"],
		SwapTotal: fields["SwapTotal"],
		SwapFree:  fields["SwapFree"],
	}

	cached := fields["Cached"] + fields["SReclaimable"]
	if shmem := fields["Shmem"]; shmem < cached {
		cached -= shmem
	}
	m.Cached = cached

	used := total
	for _, sub := range []uint64{m.Free, m.Buffers, m.Cached} {
		if sub < used {
			used -= sub
		} else {
			used = 0
			break
		}
	}
	m.Used = used
	m.Usage = 100 * float64(used) / float64(total)
	if m.SwapTotal > 0 {
		m.SwapUsage = 100 * (1 - float64(m.SwapFree)/float64(m.SwapTotal))
	}

	return m, nil
}

// ParseDiskStats parses /proc/diskstats into a map of raw kernel device
// name to cumulative I/O counters. The file reports one row per device
// and per partition; callers look up whichever name they care about.
//
// Row layout: major minor name rd_ios rd_merges rd_sectors rd_ticks
// wr_ios wr_merges wr_sectors wr_ticks ios_in_progress tot_ticks rq_ticks.
func ParseDiskStats(procDiskstats string) (map[string]DiskIOSample, error) {
	devices := make(map[string]DiskIOSample)

	scanner := bufio.NewScanner(strings.NewReader(procDiskstats))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 12 {
			return nil, fmt.Errorf("short /proc/diskstats row: %q", scanner.Text())
		}

		name := fields[2]
		reads, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse read ops for %s: %w", name, err)
		}
		writes, err := strconv.ParseUint(fields[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse write ops for %s: %w", name, err)
		}
		inFlight, err := strconv.ParseUint(fields[11], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse in-flight I/O for %s: %w", name, err)
		}

		devices[name] = DiskIOSample{
			Reads:    reads,
			Writes:   writes,
			InFlight: inFlight,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/diskstats: %w", err)
	}

	return devices, nil
}

// ParseNetDev parses /proc/net/dev into per-interface cumulative counters,
// preserving the kernel's reporting order.
func ParseNetDev(procNetDev string) ([]InterfaceCounters, error) {
	var interfaces []InterfaceCounters

	lineNum := 0
	scanner := bufio.NewScanner(strings.NewReader(procNetDev))
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Skip header lines (first two lines)
		if lineNum <= 2 {
			continue
		}

		// Format: "  iface: rx_bytes rx_packets rx_errs rx_drop ... | tx_bytes tx_packets ..."
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)

		fields := strings.Fields(rest)
		if len(fields) < 16 {
			return nil, fmt.Errorf("short /proc/net/dev row for %s: %d fields", name, len(fields))
		}

		vals := make([]uint64, 8)
		for i, idx := range []int{0, 1, 2, 3, 8, 9, 10, 11} {
			v, err := strconv.ParseUint(fields[idx], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse counter %d for %s: %w", idx, name, err)
			}
			vals[i] = v
		}

		interfaces = append(interfaces, InterfaceCounters{
			Name:      name,
			RxBytes:   vals[0],
			RxPackets: vals[1],
			RxErrors:  vals[2],
			RxDrops:   vals[3],
			TxBytes:   vals[4],
			TxPackets: vals[5],
			TxErrors:  vals[6],
			TxDrops:   vals[7],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}

	return interfaces, nil
}
