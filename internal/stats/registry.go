package stats

import "strings"

// virtualDiskPrefixes lists the pseudo block device families excluded
// from disk enumeration: loopback, ramdisks, device-mapper nodes, SCSI
// CD-ROM and generic devices, and floppies. They never reach the rate
// engine.
var virtualDiskPrefixes = []string{"loop", "ram", "zram", "dm-", "sr", "sg", "fd"}

// BaseDiskKey derives the rate-engine key for a block device: any leading
// path is dropped and a trailing run of digits is stripped, so /dev/sda1,
// sda2, and sda15 all map to "sda". Names whose partition suffix is not a
// plain digit run keep everything up to that run (nvme0n1p1 maps to
// "nvme0n1p"); partitions of one physical disk still share a key.
func BaseDiskKey(device string) EntityKey {
	name := device
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	end := len(name)
	for end > 0 && name[end-1] >= '0' && name[end-1] <= '9' {
		end--
	}
	if end == 0 {
		// Name was all digits; keep it rather than producing an empty key.
		return EntityKey(name)
	}
	return EntityKey(name[:end])
}

// IsVirtualDisk reports whether a device name (path or bare name) belongs
// to a virtual/pseudo block device family.
func IsVirtualDisk(device string) bool {
	name := device
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	for _, prefix := range virtualDiskPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// ReconcileDisks maps the raw device names reported for the current cycle
// to the set of disk EntityKeys, excluding virtual devices and collapsing
// partitions onto their base device. Order follows the kernel's reporting
// order for the cycle; it carries no rate-computation meaning and only
// affects display.
func ReconcileDisks(current []string) []EntityKey {
	var keys []EntityKey
	seen := make(map[EntityKey]bool)
	for _, name := range current {
		if IsVirtualDisk(name) {
			continue
		}
		key := BaseDiskKey(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// InterfaceKey is the rate-engine key for a network interface: the raw
// kernel name, verbatim.
func InterfaceKey(name string) EntityKey {
	return EntityKey(name)
}
