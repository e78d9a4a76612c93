// Package udisk parses the flat text dump emitted by udisksctl and
// correlates physical drives with their filesystem block devices.
package udisk

// Object path prefixes and category markers found in a udisksctl dump.
const (
	DriveHead = "/org/freedesktop/UDisks2/drives/"
	BlockHead = "/org/freedesktop/UDisks2/block_devices/"

	driveInfoMarker = "org.freedesktop.UDisks2.Drive:"
	driveAtaMarker  = "org.freedesktop.UDisks2.Drive.Ata:"

	blockMarker      = "org.freedesktop.UDisks2.Block:"
	filesystemMarker = "org.freedesktop.UDisks2.Filesystem:"
	partitionMarker  = "org.freedesktop.UDisks2.Partition:"
)

// blockFields is the allow-list of keys retained from the Block and
// Filesystem categories of a block device section. Everything else in
// the dump is noise for monitoring purposes.
var blockFields = map[string]bool{
	"Device":       true,
	"DeviceNumber": true,
	"Drive":        true,
	"Id":           true,
	"IdLabel":      true,
	"IdType":       true,
	"IdUUID":       true,
	"IdUsage":      true,
	"ReadOnly":     true,
	"Size":         true,
	"MountPoints":  true,
	"Symlinks":     true,
}

// Drive is one physical storage device record extracted from the dump.
// Info and Attributes are sparse: any key may be absent, and values stay
// raw strings until interpreted through ParseValue downstream.
type Drive struct {
	ID         string            `json:"id"`
	Info       map[string]string `json:"info"`
	Attributes map[string]string `json:"attributes"`
}

// BlockDevice is one OS-visible device node record. Drive is the
// back-reference to the owning Drive's identifier, resolved from the
// quoted object path in the dump. Symlinks is the only multi-valued
// field; it accumulates across continuation lines.
type BlockDevice struct {
	ID       string            `json:"id"`
	Drive    string            `json:"drive"`
	Fields   map[string]string `json:"fields"`
	Symlinks []string          `json:"symlinks,omitempty"`
}

// Usage is a partition's usage snapshot in human readable form.
type Usage struct {
	Total   string  `json:"total"`
	Used    string  `json:"used"`
	Free    string  `json:"free"`
	Percent float64 `json:"percent"`
}

// Disk is the merged output entity handed to the evaluator and the
// report stage. It exists only for the duration of one pass.
type Disk struct {
	ID         string            `json:"id"`
	Model      string            `json:"model"`
	Info       map[string]string `json:"info"`
	Attributes map[string]string `json:"attributes"`
	Partitions []BlockDevice     `json:"partitions,omitempty"`
	Usage      *Usage            `json:"usage,omitempty"`
}

// Dump holds the two record sets produced by one parse pass. BlockDevices
// is keyed by each record's resolved Drive back-reference; one drive may
// own several partitions.
type Dump struct {
	Drives       map[string]Drive
	BlockDevices map[string][]BlockDevice
}
