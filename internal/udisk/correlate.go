package udisk

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Options control correlation behavior.
type Options struct {
	// Strict escalates an identity conflict between a paired drive and
	// block device group to an error instead of skipping the pair.
	// Unmounted drives (count mismatches) never escalate.
	Strict bool
}

// Unmatched reports the records left over after correlation: drives
// with no block device and block device groups whose Drive reference
// names no known drive.
type Unmatched struct {
	Drives       []string `json:"drives,omitempty"`
	BlockDevices []string `json:"block_devices,omitempty"`
}

// Correlate pairs each drive with its block devices and returns the
// merged disks ordered by drive identifier. Both record sets are sorted
// internally, so input ordering never matters. When the counts match,
// the two sorted sequences are walked in lock-step and each pair's
// identity is verified; when they differ, the symmetric set difference
// is reported as unmounted and the intersection is paired by key.
func Correlate(dump Dump, opts Options) ([]Disk, Unmatched, error) {
	driveIDs := sortedKeys(dump.Drives)
	blockKeys := make([]string, 0, len(dump.BlockDevices))
	for k := range dump.BlockDevices {
		blockKeys = append(blockKeys, k)
	}
	sort.Strings(blockKeys)

	var (
		disks []Disk
		un    Unmatched
	)

	if len(driveIDs) == len(blockKeys) {
		for i, id := range driveIDs {
			if id != blockKeys[i] {
				if opts.Strict {
					return nil, Unmatched{}, fmt.Errorf(
						"drive %q does not match block device drive %q", id, blockKeys[i])
				}
				log.Warn().
					Str("drive", id).
					Str("block_drive", blockKeys[i]).
					Msg("Skipping mismatched drive/block device pair")
				un.Drives = append(un.Drives, id)
				un.BlockDevices = append(un.BlockDevices, blockKeys[i])
				continue
			}
			disks = append(disks, mergeDisk(dump.Drives[id], dump.BlockDevices[id]))
		}
		return disks, un, nil
	}

	log.Warn().
		Int("drives", len(driveIDs)).
		Int("block_devices", len(blockKeys)).
		Msg("Number of block devices does not match the number of drives")

	blockSet := make(map[string]bool, len(blockKeys))
	for _, k := range blockKeys {
		blockSet[k] = true
	}
	for _, id := range driveIDs {
		if !blockSet[id] {
			un.Drives = append(un.Drives, id)
		}
	}
	for _, k := range blockKeys {
		if _, ok := dump.Drives[k]; !ok {
			un.BlockDevices = append(un.BlockDevices, k)
		}
	}
	if len(un.Drives) > 0 {
		log.Warn().Strs("drives", un.Drives).Msg("Unmounted drive(s) found")
	}
	if len(un.BlockDevices) > 0 {
		log.Warn().Strs("block_devices", un.BlockDevices).Msg("Block device(s) reference unknown drives")
	}

	for _, id := range driveIDs {
		blocks, ok := dump.BlockDevices[id]
		if !ok {
			continue
		}
		disks = append(disks, mergeDisk(dump.Drives[id], blocks))
	}
	return disks, un, nil
}

func mergeDisk(d Drive, blocks []BlockDevice) Disk {
	return Disk{
		ID:         d.ID,
		Model:      d.Info["Model"],
		Info:       d.Info,
		Attributes: d.Attributes,
		Partitions: blocks,
	}
}

func sortedKeys(m map[string]Drive) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
