package udisk

import (
	"strings"
)

// Parse runs both parse passes over one dump and groups the block
// devices by their resolved Drive back-reference. devices is the set of
// partition device names (e.g. "sda1") discovered outside the dump;
// only block device sections matching a known name are read.
func Parse(text string, devices []string) Dump {
	return Dump{
		Drives:       ParseDrives(text),
		BlockDevices: GroupByDrive(ParseBlockDevices(text, devices)),
	}
}

// ParseDrives extracts the drive sections from a dump. A single forward
// pass: a drive header opens a fresh record, the Drive and Drive.Ata
// markers select the Info or Attributes category, and every other line
// is a key/value pair split on its first colon. Lines without a colon
// are skipped. An empty input yields zero drives.
func ParseDrives(text string) map[string]Drive {
	drives := make(map[string]Drive)
	var head, category string

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, DriveHead) {
			head = strings.TrimSpace(strings.TrimRight(strings.TrimPrefix(line, DriveHead), ":"))
			// Re-encountering a header resets the record.
			drives[head] = Drive{
				ID:         head,
				Info:       make(map[string]string),
				Attributes: make(map[string]string),
			}
			category = ""
			continue
		}
		if strings.HasPrefix(line, BlockHead) {
			// A block device header ends the current drive section.
			head, category = "", ""
			continue
		}
		if head == "" {
			continue
		}
		switch strings.TrimSpace(line) {
		case driveInfoMarker:
			category = "Info"
			continue
		case driveAtaMarker:
			category = "Attributes"
			continue
		}
		if category == "" {
			continue
		}
		key, val, ok := splitKV(line)
		if !ok {
			continue
		}
		store := drives[head].Info
		if category == "Attributes" {
			store = drives[head].Attributes
		}
		if _, exists := store[key]; !exists {
			store[key] = val
		}
	}
	return drives
}

// ParseBlockDevices extracts the block device sections from a dump. A
// line counts as a section header only when it exactly equals the
// expected header for one of the given device names; a repeated header
// resets that device's record. Only the Block and Filesystem categories
// persist fields, and only allow-listed keys are kept. Partition
// category lines are consumed but dropped.
func ParseBlockDevices(text string, devices []string) []BlockDevice {
	headers := make(map[string]string, len(devices))
	for _, d := range devices {
		headers[BlockHead+d+":"] = d
	}

	var (
		list     []*BlockDevice
		index    = make(map[string]int)
		cur      *BlockDevice
		category string
		lastKey  string
	)

	for _, line := range strings.Split(text, "\n") {
		if name, ok := headers[line]; ok {
			b := &BlockDevice{ID: name, Fields: make(map[string]string)}
			if i, seen := index[name]; seen {
				list[i] = b
			} else {
				index[name] = len(list)
				list = append(list, b)
			}
			cur, category, lastKey = b, "", ""
			continue
		}
		if strings.HasPrefix(line, DriveHead) || strings.HasPrefix(line, BlockHead) {
			// Another object's header ends the current section. Unknown
			// block devices are skipped wholesale this way.
			cur, category, lastKey = nil, "", ""
			continue
		}
		if cur == nil {
			continue
		}
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case blockMarker:
			category = "Block"
			continue
		case filesystemMarker:
			category = "Filesystem"
			continue
		case partitionMarker:
			category = "Partition"
			continue
		}
		if category == "" {
			continue
		}
		key, val, ok := splitKV(line)
		if !ok {
			// A bare line directly after Symlinks carries another path.
			if lastKey == "Symlinks" && trimmed != "" {
				cur.Symlinks = append(cur.Symlinks, trimmed)
			}
			continue
		}
		if category == "Partition" || !blockFields[key] {
			continue
		}
		switch key {
		case "Drive":
			if cur.Drive == "" {
				cur.Drive = unwrapObjectPath(val)
			}
		case "Symlinks":
			if cur.Symlinks == nil {
				cur.Symlinks = []string{val}
			}
		default:
			if _, exists := cur.Fields[key]; !exists {
				cur.Fields[key] = val
			}
		}
		lastKey = key
	}

	out := make([]BlockDevice, 0, len(list))
	for _, b := range list {
		out = append(out, *b)
	}
	return out
}

// GroupByDrive buckets block devices by their resolved Drive field.
func GroupByDrive(blocks []BlockDevice) map[string][]BlockDevice {
	grouped := make(map[string][]BlockDevice, len(blocks))
	for _, b := range blocks {
		grouped[b.Drive] = append(grouped[b.Drive], b)
	}
	return grouped
}

// splitKV splits a line on its first colon; values may themselves
// contain colons. ok is false when the line has no colon at all.
func splitKV(line string) (key, val string, ok bool) {
	key, val, ok = strings.Cut(strings.TrimSpace(line), ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(val), true
}

// unwrapObjectPath strips the surrounding quotes and the drive prefix
// from a Drive back-reference, which the dump prints as a quoted object
// path. This is a literal unwrap, never an expression evaluation.
func unwrapObjectPath(val string) string {
	return strings.TrimPrefix(strings.Trim(val, `'"`), DriveHead)
}
