package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nuclearlighters/diskmon/internal/udisk"
)

func TestRender(t *testing.T) {
	disks := []udisk.Disk{{
		ID:    "ATA_FOO",
		Model: "Foo SSD 1TB",
		Info:  map[string]string{"Serial": "12345"},
		Attributes: map[string]string{
			"SmartTemperature": "45",
			"SmartEnabled":     "true",
		},
		Partitions: []udisk.BlockDevice{{
			ID:     "sda1",
			Drive:  "ATA_FOO",
			Fields: map[string]string{"MountPoints": "/mnt/data"},
		}},
		Usage: &udisk.Usage{Total: "1 GB", Used: "512 MB", Free: "512 MB", Percent: 50},
	}}

	html, err := Render(disks, time.Now())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"ATA_FOO", "Foo SSD 1TB", "SmartTemperature", "45", "/mnt/data", "50%"} {
		if !strings.Contains(html, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	html, err := Render(nil, time.Now())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(html, "No disks found") {
		t.Error("Render(nil) missing empty placeholder")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(nil, dir, "disk_report_01-02-2006.html")
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("WriteFile() path = %q, want under %q", path, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "Disk Report") {
		t.Error("written report missing title")
	}
}
