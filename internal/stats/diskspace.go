package stats

import (
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// Mount is one mounted filesystem as enumerated from the mount table.
type Mount struct {
	Device string
	Point  string
	Fstype string
}

// SpaceUsage is the statvfs-equivalent space accounting for one mount.
type SpaceUsage struct {
	Total     uint64
	Available uint64
	Used      uint64
}

// MountLister enumerates mounted filesystems. The default implementation
// reads the system mount table via gopsutil; tests substitute fixtures.
type MountLister func() ([]Mount, error)

// SpaceFunc reports space usage for a mount point.
type SpaceFunc func(mountpoint string) (SpaceUsage, error)

// SystemMounts lists mounted filesystems backed by real block devices.
// Pseudo filesystems (proc, tmpfs, cgroup and friends) report no device
// path and are dropped here; virtual block devices are filtered later by
// the registry.
func SystemMounts() ([]Mount, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}

	var mounts []Mount
	for _, p := range parts {
		if !strings.HasPrefix(p.Device, "/dev/") {
			continue
		}
		mounts = append(mounts, Mount{
			Device: p.Device,
			Point:  p.Mountpoint,
			Fstype: p.Fstype,
		})
	}
	return mounts, nil
}

// MountSpace reports space usage for one mount point via statfs.
func MountSpace(mountpoint string) (SpaceUsage, error) {
	usage, err := disk.Usage(mountpoint)
	if err != nil {
		return SpaceUsage{}, err
	}
	return SpaceUsage{
		Total:     usage.Total,
		Available: usage.Free,
		Used:      usage.Used,
	}, nil
}
