// Package partitions enumerates the user-facing disk partitions on this
// host, filtering out virtual and system mounts.
package partitions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// Mountpoint prefixes that never correspond to user-facing storage.
var systemMountpoints = []string{
	"/sys",
	"/proc",
	"/dev",
	"/run",
	"/boot",
	"/tmp",
	"/var",
	"/snap",
	"/var/lib/docker",
	"/dev/loop",
	"/run/user",
	"/run/snapd",
}

// Filesystem types backing virtual or system-managed mounts.
var systemFstypes = map[string]bool{
	"sysfs":       true,
	"proc":        true,
	"devtmpfs":    true,
	"tmpfs":       true,
	"devpts":      true,
	"fusectl":     true,
	"securityfs":  true,
	"overlay":     true,
	"hugetlbfs":   true,
	"debugfs":     true,
	"cgroup2":     true,
	"configfs":    true,
	"bpf":         true,
	"binfmt_misc": true,
	"efivarfs":    true,
	"fuse":        true,
	"nsfs":        true,
	"squashfs":    true,
	"autofs":      true,
	"tracefs":     true,
	"pstore":      true,
}

// List returns the host's non-system partitions.
func List(ctx context.Context) ([]disk.PartitionStat, error) {
	parts, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	return Filter(parts), nil
}

// LoadSample reads partitions from a JSON sample file, used in dry-run
// mode instead of touching the live system.
func LoadSample(path string) ([]disk.PartitionStat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample partitions: %w", err)
	}
	var parts []disk.PartitionStat
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("failed to decode sample partitions: %w", err)
	}
	return Filter(parts), nil
}

// Filter drops partitions mounted under system paths or backed by
// system filesystem types.
func Filter(parts []disk.PartitionStat) []disk.PartitionStat {
	var out []disk.PartitionStat
	for _, p := range parts {
		if systemFstypes[p.Fstype] {
			continue
		}
		system := false
		for _, mnt := range systemMountpoints {
			if strings.HasPrefix(p.Mountpoint, mnt) {
				system = true
				break
			}
		}
		if !system {
			out = append(out, p)
		}
	}
	return out
}

// DeviceNames returns the bare device names ("sda1") for the given
// partitions; the dump parser matches block device headers against it.
func DeviceNames(parts []disk.PartitionStat) []string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if i := strings.LastIndex(p.Device, "/"); i >= 0 {
			names = append(names, p.Device[i+1:])
		} else {
			names = append(names, p.Device)
		}
	}
	return names
}

// Mountpoints maps each partition's device path to its mountpoint.
func Mountpoints(parts []disk.PartitionStat) map[string]string {
	m := make(map[string]string, len(parts))
	for _, p := range parts {
		if _, ok := m[p.Device]; !ok {
			m[p.Device] = p.Mountpoint
		}
	}
	return m
}
