package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
)

type fakeGPU struct {
	devices []GPUStats
	err     error
	driver  bool
}

func (f *fakeGPU) DriverBacked() bool           { return f.driver }
func (f *fakeGPU) Devices() ([]GPUStats, error) { return f.devices, f.err }

// procFixture holds a writable fixture tree so tests can advance counters
// between cycles.
type procFixture struct {
	t    *testing.T
	root string
}

func newProcFixture(t *testing.T) *procFixture {
	return &procFixture{t: t, root: t.TempDir()}
}

func (f *procFixture) write(name, content string) {
	f.t.Helper()
	path := filepath.Join(f.root, name)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *procFixture) writeAll(stat string) {
	f.write("stat", stat)
	f.write("cpuinfo", "model name: Test CPU\n")
	f.write("loadavg", "0.50 0.40 0.30 1/100 999\n")
	f.write("meminfo", "MemTotal: 1000 kB\nMemFree: 600 kB\n")
	f.write("diskstats", "8 0 sda 100 0 0 0 50 0 0 0 2 0 0\n")
	f.write("net/dev", "h\nh\n  eth0: 1000 10 0 0 0 0 0 0 500 5 0 0 0 0 0 0\n")
}

func newTestAggregator(t *testing.T, f *procFixture, gpu GPUSource) *Aggregator {
	agg := NewAggregator(&Source{Root: f.root}, NewEngine(), gpu, logger.Noop())
	agg.mounts = func() ([]Mount, error) {
		return []Mount{{Device: "/dev/sda1", Point: "/", Fstype: "ext4"}}, nil
	}
	agg.space = func(string) (SpaceUsage, error) {
		return SpaceUsage{Total: 1000, Available: 400, Used: 600}, nil
	}
	return agg
}

func TestAggregatorUpdate(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\ncpu0 1 2 3 4 5 6 7 8 0 0\n")

	gpu := &fakeGPU{driver: true, devices: []GPUStats{{Index: 0, Name: "Test GPU", Supported: true, Utilization: 40}}}
	agg := newTestAggregator(t, f, gpu)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return t0 }

	snap, err := agg.Update()
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, "Test CPU", snap.CPU.Model)
	assert.Equal(t, 1, snap.CPU.Cores)
	assert.Zero(t, snap.CPU.Usage, "first cycle has no delta")
	assert.Equal(t, [3]float64{0.50, 0.40, 0.30}, snap.CPU.LoadAvg)
	assert.Equal(t, uint64(1000*1024), snap.Memory.Total)
	assert.True(t, snap.DriverBacked)
	require.Len(t, snap.GPUs, 1)
	assert.Equal(t, "Test GPU", snap.GPUs[0].Name)

	require.Len(t, snap.Disks, 1)
	disk := snap.Disks[0]
	assert.Equal(t, "sda", disk.Device)
	assert.Equal(t, "/", disk.Mount)
	assert.InDelta(t, 60.0, disk.Usage, 0.001)
	assert.Equal(t, uint64(2), disk.InFlight)
	assert.Zero(t, disk.ReadsPerSec)

	require.Len(t, snap.Network, 1)
	assert.Equal(t, "eth0", snap.Network[0].Name)
	assert.Zero(t, snap.Network[0].RxBytesPerSec)

	// Second cycle: counters advanced, rates become non-zero.
	f.writeAll("cpu  350 0 350 1100 200 0 0 0 0 0\ncpu0 1 2 3 4 5 6 7 8 0 0\n")
	f.write("diskstats", "8 0 sda 300 0 0 0 150 0 0 0 0 0 0\n")
	f.write("net/dev", "h\nh\n  eth0: 3000 20 0 0 0 0 0 0 1500 10 0 0 0 0 0 0\n")
	agg.now = func() time.Time { return t0.Add(2 * time.Second) }

	snap, err = agg.Update()
	require.NoError(t, err)

	// idle delta 500 of total delta 1000
	assert.InDelta(t, 50.0, snap.CPU.Usage, 0.001)
	assert.InDelta(t, 100.0, snap.Disks[0].ReadsPerSec, 0.001)
	assert.InDelta(t, 50.0, snap.Disks[0].WritesPerSec, 0.001)
	assert.InDelta(t, 1000.0, snap.Network[0].RxBytesPerSec, 0.001)
	assert.InDelta(t, 500.0, snap.Network[0].TxBytesPerSec, 0.001)
}

func TestAggregatorUpdate_AllOrNothing(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")
	require.NoError(t, os.Remove(filepath.Join(f.root, "net/dev")))

	agg := newTestAggregator(t, f, &fakeGPU{})
	agg.now = time.Now

	snap, err := agg.Update()
	require.Error(t, err)
	assert.Nil(t, snap, "a failed domain yields no snapshot at all")
	assert.True(t, errors.IsCode(err, errors.ErrUnavailable))
}

func TestAggregatorUpdate_GPUFailureAbortsCycle(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")

	agg := newTestAggregator(t, f, &fakeGPU{err: errors.New(errors.ErrUnavailable, "driver lost", "")})
	agg.now = time.Now

	snap, err := agg.Update()
	require.Error(t, err)
	assert.Nil(t, snap)
}

func TestAggregatorUpdate_UnreadableMountSkipsRow(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")

	agg := newTestAggregator(t, f, &fakeGPU{})
	agg.now = time.Now
	agg.mounts = func() ([]Mount, error) {
		return []Mount{
			{Device: "/dev/sda1", Point: "/", Fstype: "ext4"},
			{Device: "/dev/sdb1", Point: "/mnt/stale", Fstype: "nfs"},
		}, nil
	}
	agg.space = func(point string) (SpaceUsage, error) {
		if point == "/mnt/stale" {
			return SpaceUsage{}, errors.New(errors.ErrUnavailable, "stale handle", "")
		}
		return SpaceUsage{Total: 1000, Used: 100, Available: 900}, nil
	}

	snap, err := agg.Update()
	require.NoError(t, err, "one bad mount must not fail the cycle")
	require.Len(t, snap.Disks, 1)
	assert.Equal(t, "/", snap.Disks[0].Mount)
}

func TestAggregatorUpdate_VirtualMountsFiltered(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")

	agg := newTestAggregator(t, f, &fakeGPU{})
	agg.now = time.Now
	agg.mounts = func() ([]Mount, error) {
		return []Mount{
			{Device: "/dev/loop3", Point: "/snap/foo", Fstype: "squashfs"},
			{Device: "/dev/sda1", Point: "/", Fstype: "ext4"},
		}, nil
	}

	snap, err := agg.Update()
	require.NoError(t, err)
	require.Len(t, snap.Disks, 1)
	assert.Equal(t, "sda", snap.Disks[0].Device)
}

func TestAggregatorUpdate_MissingDiskstatsDeviceZeroRates(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")

	agg := newTestAggregator(t, f, &fakeGPU{})
	agg.now = time.Now
	agg.mounts = func() ([]Mount, error) {
		return []Mount{{Device: "/dev/vdz1", Point: "/data", Fstype: "ext4"}}, nil
	}

	snap, err := agg.Update()
	require.NoError(t, err)
	require.Len(t, snap.Disks, 1)
	assert.Zero(t, snap.Disks[0].ReadsPerSec)
	assert.Zero(t, snap.Disks[0].WritesPerSec)
	assert.Zero(t, snap.Disks[0].InFlight)
}

func TestAggregatorUpdate_NVMeRatesUseWholeDiskRow(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")
	// The kernel reports nvme0n1 and nvme0n1p1, never the "nvme0n1p" rate
	// key, so the counters must come from the whole-disk row.
	f.write("diskstats", "259 0 nvme0n1 100 0 0 0 50 0 0 0 3 0 0\n259 1 nvme0n1p1 90 0 0 0 45 0 0 0 1 0 0\n")

	agg := newTestAggregator(t, f, &fakeGPU{})
	agg.mounts = func() ([]Mount, error) {
		return []Mount{{Device: "/dev/nvme0n1p1", Point: "/", Fstype: "ext4"}}, nil
	}

	t0 := time.Now()
	agg.now = func() time.Time { return t0 }
	snap, err := agg.Update()
	require.NoError(t, err)
	require.Len(t, snap.Disks, 1)
	assert.Equal(t, uint64(3), snap.Disks[0].InFlight, "in-flight comes from the whole-disk row")

	f.write("diskstats", "259 0 nvme0n1 300 0 0 0 150 0 0 0 0 0 0\n259 1 nvme0n1p1 280 0 0 0 140 0 0 0 0 0 0\n")
	agg.now = func() time.Time { return t0.Add(2 * time.Second) }

	snap, err = agg.Update()
	require.NoError(t, err)
	require.Len(t, snap.Disks, 1)
	assert.InDelta(t, 100.0, snap.Disks[0].ReadsPerSec, 0.001)
	assert.InDelta(t, 50.0, snap.Disks[0].WritesPerSec, 0.001)
}

func TestLookupDiskIO(t *testing.T) {
	io := map[string]DiskIOSample{
		"sda":       {Reads: 1},
		"nvme0n1":   {Reads: 2},
		"mmcblk0":   {Reads: 3},
		"nvme1n1p2": {Reads: 4},
	}

	tests := []struct {
		name      string
		key       EntityKey
		device    string
		wantReads uint64
		wantOK    bool
	}{
		{name: "plain base device", key: "sda", device: "sda1", wantReads: 1, wantOK: true},
		{name: "nvme whole-disk row", key: "nvme0n1p", device: "nvme0n1p1", wantReads: 2, wantOK: true},
		{name: "mmc whole-disk row", key: "mmcblk0p", device: "mmcblk0p1", wantReads: 3, wantOK: true},
		{name: "partition row fallback", key: "nvme1n1p", device: "nvme1n1p2", wantReads: 4, wantOK: true},
		{name: "untracked device", key: "vdz", device: "vdz1", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, ok := lookupDiskIO(io, tt.key, tt.device)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReads, sample.Reads)
		})
	}
}

func TestAggregatorUpdate_PartitionsShareRateKey(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")

	agg := newTestAggregator(t, f, &fakeGPU{})
	agg.mounts = func() ([]Mount, error) {
		return []Mount{
			{Device: "/dev/sda1", Point: "/", Fstype: "ext4"},
			{Device: "/dev/sda2", Point: "/home", Fstype: "ext4"},
		}, nil
	}

	t0 := time.Now()
	agg.now = func() time.Time { return t0 }
	_, err := agg.Update()
	require.NoError(t, err)

	f.write("diskstats", "8 0 sda 300 0 0 0 150 0 0 0 0 0 0\n")
	agg.now = func() time.Time { return t0.Add(2 * time.Second) }

	snap, err := agg.Update()
	require.NoError(t, err)
	require.Len(t, snap.Disks, 2)

	// Both partitions report the base device's rates; computing the delta
	// twice in one cycle would have halved the window and doubled later
	// rates.
	assert.InDelta(t, 100.0, snap.Disks[0].ReadsPerSec, 0.001)
	assert.InDelta(t, 100.0, snap.Disks[1].ReadsPerSec, 0.001)
}

func TestAggregatorUpdate_ModelFallback(t *testing.T) {
	f := newProcFixture(t)
	f.writeAll("cpu  100 0 100 700 100 0 0 0 0 0\n")
	f.write("cpuinfo", "processor: 0\n")

	agg := newTestAggregator(t, f, &fakeGPU{})
	agg.now = time.Now

	snap, err := agg.Update()
	require.NoError(t, err, "missing model string is cosmetic, not fatal")
	assert.Equal(t, "Unknown CPU", snap.CPU.Model)
}
