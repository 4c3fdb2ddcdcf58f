package stats

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/stats/parsers"
)

// Source reads one snapshot of cumulative kernel counters per domain.
// Reads are pure functions of current kernel state with no memoization;
// the rate engine owns all cross-cycle state.
//
// Root points at the procfs mount and is overridable so tests can read
// fixture trees instead of the live kernel.
type Source struct {
	Root string
}

// NewSource creates a Source reading from the live /proc.
func NewSource() *Source {
	return &Source{Root: "/proc"}
}

// readFile reads one kernel file, classifying failures: a missing file is
// ErrUnavailable (expected in constrained environments), a permission
// error is ErrPermission.
func (s *Source) readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, name))
	if err != nil {
		code := errors.ErrUnavailable
		if os.IsPermission(err) {
			code = errors.ErrPermission
		}
		return "", errors.WrapWithCode(err, code,
			"Cannot read /proc/"+name,
			"Check that procfs is mounted and readable")
	}
	return string(data), nil
}

// CPU reads the aggregate cumulative jiffie counters and the online core
// count from /proc/stat.
func (s *Source) CPU() (CPUSample, int, error) {
	text, err := s.readFile("stat")
	if err != nil {
		return CPUSample{}, 0, err
	}
	sample, cores, err := parsers.ParseCPUStat(text)
	if err != nil {
		return CPUSample{}, 0, errors.WrapWithCode(err, errors.ErrParse,
			"Unexpected /proc/stat layout", "")
	}
	return sample, cores, nil
}

// CPUModel reads the CPU model string from /proc/cpuinfo.
func (s *Source) CPUModel() (string, error) {
	text, err := s.readFile("cpuinfo")
	if err != nil {
		return "", err
	}
	model, err := parsers.ParseCPUModel(text)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrParse,
			"Unexpected /proc/cpuinfo layout", "")
	}
	return model, nil
}

// LoadAvg reads the 1/5/15 minute load averages from /proc/loadavg.
func (s *Source) LoadAvg() ([3]float64, error) {
	text, err := s.readFile("loadavg")
	if err != nil {
		return [3]float64{}, err
	}
	load, err := parsers.ParseLoadAvg(text)
	if err != nil {
		return [3]float64{}, errors.WrapWithCode(err, errors.ErrParse,
			"Unexpected /proc/loadavg layout", "")
	}
	return load, nil
}

// Memory reads a single /proc/meminfo snapshot.
func (s *Source) Memory() (MemoryStats, error) {
	text, err := s.readFile("meminfo")
	if err != nil {
		return MemoryStats{}, err
	}
	mem, err := parsers.ParseMemInfo(text)
	if err != nil {
		return MemoryStats{}, errors.WrapWithCode(err, errors.ErrParse,
			"Unexpected /proc/meminfo layout", "")
	}
	return mem, nil
}

// DiskIO reads cumulative per-device I/O counters from /proc/diskstats,
// keyed by the raw kernel device name.
func (s *Source) DiskIO() (map[string]DiskIOSample, error) {
	text, err := s.readFile("diskstats")
	if err != nil {
		return nil, err
	}
	devices, err := parsers.ParseDiskStats(text)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse,
			"Unexpected /proc/diskstats layout", "")
	}
	return devices, nil
}

// NetDev reads cumulative per-interface counters from /proc/net/dev in
// kernel reporting order.
func (s *Source) NetDev() ([]InterfaceCounters, error) {
	text, err := s.readFile("net/dev")
	if err != nil {
		return nil, err
	}
	interfaces, err := parsers.ParseNetDev(text)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse,
			"Unexpected /proc/net/dev layout", "")
	}
	return interfaces, nil
}
