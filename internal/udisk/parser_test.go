package udisk

import (
	"reflect"
	"testing"
)

const sampleDump = `/org/freedesktop/UDisks2/block_devices/sda1:
  org.freedesktop.UDisks2.Block:
    Device:                     /dev/sda1
    DeviceNumber:               2049
    Drive:                      '/org/freedesktop/UDisks2/drives/ATA_FOO_12345'
    Id:                         by-uuid-0a1b2c3d
    IdLabel:                    data
    IdType:                     ext4
    IdUUID:                     0a1b2c3d
    IdUsage:                    filesystem
    PreferredDevice:            /dev/sda1
    ReadOnly:                   false
    Size:                       1000203091968
    Symlinks:                   /dev/disk/by-id/ata-Foo_SSD_1TB_12345-part1
                                /dev/disk/by-label/data
                                /dev/disk/by-uuid/0a1b2c3d
  org.freedesktop.UDisks2.Filesystem:
    MountPoints:            /mnt/data
    Size:                   999999999488
  org.freedesktop.UDisks2.Partition:
    Number:             1
    Offset:             1048576
    Size:               1000203091968
    Table:              '/org/freedesktop/UDisks2/block_devices/sda'
/org/freedesktop/UDisks2/drives/ATA_FOO_12345:
  org.freedesktop.UDisks2.Drive:
    CanPowerOff:                false
    ConnectionBus:              sata
    Id:                         ATA-FOO-12345
    Model:                      Foo SSD 1TB
    Serial:                     12345
    Size:                       1000204886016
    SortKey:                    00coldplug/00fixed/sd_a
  org.freedesktop.UDisks2.Drive.Ata:
    SmartEnabled:               true
    SmartFailing:               false
    SmartNumBadSectors:         0
    SmartSelftestStatus:        success
    SmartTemperature:           318.15
`

func TestParseDrivesEmptyInput(t *testing.T) {
	if got := ParseDrives(""); len(got) != 0 {
		t.Errorf("ParseDrives(\"\") = %d drives, want 0", len(got))
	}
	if got := ParseBlockDevices("", []string{"sda1"}); len(got) != 0 {
		t.Errorf("ParseBlockDevices(\"\") = %d block devices, want 0", len(got))
	}
}

func TestParseDrives(t *testing.T) {
	drives := ParseDrives(sampleDump)

	drive, ok := drives["ATA_FOO_12345"]
	if !ok {
		t.Fatalf("ParseDrives() missing drive ATA_FOO_12345, got %v", drives)
	}
	if drive.Info["Model"] != "Foo SSD 1TB" {
		t.Errorf("Info[Model] = %q, want %q", drive.Info["Model"], "Foo SSD 1TB")
	}
	if drive.Info["Size"] != "1000204886016" {
		t.Errorf("Info[Size] = %q, want raw string size", drive.Info["Size"])
	}
	if drive.Attributes["SmartTemperature"] != "318.15" {
		t.Errorf("Attributes[SmartTemperature] = %q, want 318.15", drive.Attributes["SmartTemperature"])
	}
	if drive.Attributes["SmartSelftestStatus"] != "success" {
		t.Errorf("Attributes[SmartSelftestStatus] = %q, want success", drive.Attributes["SmartSelftestStatus"])
	}
}

func TestParseDrivesSectionEndsAtNextHeader(t *testing.T) {
	text := "/org/freedesktop/UDisks2/drives/X:\n" +
		"  org.freedesktop.UDisks2.Drive.Ata:\n" +
		"    SmartEnabled: true\n" +
		"/org/freedesktop/UDisks2/block_devices/sda1:\n" +
		"  org.freedesktop.UDisks2.Block:\n" +
		"    Device: /dev/sda1\n"

	drives := ParseDrives(text)
	if _, ok := drives["X"].Attributes["Device"]; ok {
		t.Error("block device fields leaked into the preceding drive's attributes")
	}
	if drives["X"].Attributes["SmartEnabled"] != "true" {
		t.Errorf("Attributes[SmartEnabled] = %q, want true", drives["X"].Attributes["SmartEnabled"])
	}
}

func TestParseDrivesNoCategories(t *testing.T) {
	// A header with no category lines still yields a record with empty
	// sub-mappings.
	drives := ParseDrives("/org/freedesktop/UDisks2/drives/BARE_DRIVE:\n")

	drive, ok := drives["BARE_DRIVE"]
	if !ok {
		t.Fatal("ParseDrives() missing drive BARE_DRIVE")
	}
	if len(drive.Info) != 0 || len(drive.Attributes) != 0 {
		t.Errorf("bare drive = %+v, want empty Info and Attributes", drive)
	}
}

func TestParseDrivesRepeatedHeaderResets(t *testing.T) {
	text := "/org/freedesktop/UDisks2/drives/X:\n" +
		"  org.freedesktop.UDisks2.Drive:\n" +
		"    Model: first\n" +
		"/org/freedesktop/UDisks2/drives/X:\n" +
		"  org.freedesktop.UDisks2.Drive:\n" +
		"    Serial: abc\n"

	drives := ParseDrives(text)
	if _, ok := drives["X"].Info["Model"]; ok {
		t.Error("repeated header kept stale Model from the first record")
	}
	if drives["X"].Info["Serial"] != "abc" {
		t.Errorf("Info[Serial] = %q, want abc", drives["X"].Info["Serial"])
	}
}

func TestParseDrivesFirstWriteWins(t *testing.T) {
	text := "/org/freedesktop/UDisks2/drives/X:\n" +
		"  org.freedesktop.UDisks2.Drive:\n" +
		"    Model: first\n" +
		"    Model: second\n"

	drives := ParseDrives(text)
	if got := drives["X"].Info["Model"]; got != "first" {
		t.Errorf("Info[Model] = %q, want first occurrence to win", got)
	}
}

func TestParseDrivesValueWithColons(t *testing.T) {
	text := "/org/freedesktop/UDisks2/drives/X:\n" +
		"  org.freedesktop.UDisks2.Drive:\n" +
		"    WWN: 0x5000c500:a1b2c3d4\n"

	drives := ParseDrives(text)
	if got := drives["X"].Info["WWN"]; got != "0x5000c500:a1b2c3d4" {
		t.Errorf("Info[WWN] = %q, split must use the first colon only", got)
	}
}

func TestParseBlockDevices(t *testing.T) {
	blocks := ParseBlockDevices(sampleDump, []string{"sda1"})
	if len(blocks) != 1 {
		t.Fatalf("ParseBlockDevices() = %d records, want 1", len(blocks))
	}

	b := blocks[0]
	if b.ID != "sda1" {
		t.Errorf("ID = %q, want sda1", b.ID)
	}
	if b.Drive != "ATA_FOO_12345" {
		t.Errorf("Drive = %q, want unwrapped identifier ATA_FOO_12345", b.Drive)
	}
	if b.Fields["Device"] != "/dev/sda1" {
		t.Errorf("Fields[Device] = %q, want /dev/sda1", b.Fields["Device"])
	}
	if b.Fields["MountPoints"] != "/mnt/data" {
		t.Errorf("Fields[MountPoints] = %q, want /mnt/data", b.Fields["MountPoints"])
	}
	// PreferredDevice is not on the allow-list.
	if _, ok := b.Fields["PreferredDevice"]; ok {
		t.Error("Fields kept PreferredDevice, want it discarded")
	}
	// Partition category keys advance the state machine but are dropped.
	if _, ok := b.Fields["Offset"]; ok {
		t.Error("Fields kept Partition-category key Offset, want it dropped")
	}
	if _, ok := b.Fields["Number"]; ok {
		t.Error("Fields kept Partition-category key Number, want it dropped")
	}
}

func TestParseBlockDevicesFirstWriteWins(t *testing.T) {
	blocks := ParseBlockDevices(sampleDump, []string{"sda1"})
	if len(blocks) != 1 {
		t.Fatalf("ParseBlockDevices() = %d records, want 1", len(blocks))
	}
	// Size appears in Block first, then again in Filesystem.
	if got := blocks[0].Fields["Size"]; got != "1000203091968" {
		t.Errorf("Fields[Size] = %q, want the Block-category value to win", got)
	}
}

func TestParseBlockDevicesSymlinks(t *testing.T) {
	blocks := ParseBlockDevices(sampleDump, []string{"sda1"})
	if len(blocks) != 1 {
		t.Fatalf("ParseBlockDevices() = %d records, want 1", len(blocks))
	}

	want := []string{
		"/dev/disk/by-id/ata-Foo_SSD_1TB_12345-part1",
		"/dev/disk/by-label/data",
		"/dev/disk/by-uuid/0a1b2c3d",
	}
	if !reflect.DeepEqual(blocks[0].Symlinks, want) {
		t.Errorf("Symlinks = %v, want %v", blocks[0].Symlinks, want)
	}
}

func TestParseBlockDevicesUnknownDeviceIgnored(t *testing.T) {
	// The header set drives matching: without sda1 in the known set the
	// whole section is skipped.
	blocks := ParseBlockDevices(sampleDump, []string{"sdb1"})
	if len(blocks) != 0 {
		t.Errorf("ParseBlockDevices() = %d records, want 0 for unknown device", len(blocks))
	}
}

func TestParseBlockDevicesRepeatedHeaderResets(t *testing.T) {
	text := "/org/freedesktop/UDisks2/block_devices/sda1:\n" +
		"  org.freedesktop.UDisks2.Block:\n" +
		"    IdLabel: stale\n" +
		"/org/freedesktop/UDisks2/block_devices/sda1:\n" +
		"  org.freedesktop.UDisks2.Block:\n" +
		"    Device: /dev/sda1\n"

	blocks := ParseBlockDevices(text, []string{"sda1"})
	if len(blocks) != 1 {
		t.Fatalf("ParseBlockDevices() = %d records, want 1 after reset", len(blocks))
	}
	if _, ok := blocks[0].Fields["IdLabel"]; ok {
		t.Error("repeated header kept stale IdLabel from the first record")
	}
	if blocks[0].Fields["Device"] != "/dev/sda1" {
		t.Errorf("Fields[Device] = %q, want /dev/sda1", blocks[0].Fields["Device"])
	}
}

func TestParseGroupsByDrive(t *testing.T) {
	dump := Parse(sampleDump, []string{"sda1"})

	if len(dump.Drives) != 1 {
		t.Fatalf("Parse() = %d drives, want 1", len(dump.Drives))
	}
	group, ok := dump.BlockDevices["ATA_FOO_12345"]
	if !ok {
		t.Fatalf("Parse() block devices not grouped under drive, got %v", dump.BlockDevices)
	}
	if len(group) != 1 || group[0].ID != "sda1" {
		t.Errorf("group = %v, want single sda1 record", group)
	}
}
