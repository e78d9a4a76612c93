package report

import (
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
)

func TestSizeConverter(t *testing.T) {
	tests := []struct {
		name string
		in   uint64
		want string
	}{
		{"zero", 0, "0 B"},
		{"below one KB", 1023, "1023 B"},
		{"exactly one KB", 1024, "1 KB"},
		{"fractional KB", 1536, "1.5 KB"},
		{"one MB", 1024 * 1024, "1 MB"},
		{"one GB", 1024 * 1024 * 1024, "1 GB"},
		{"terabyte drive", 1000204886016, "931.51 GB"},
		{"single byte", 1, "1 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SizeConverter(tt.in); got != tt.want {
				t.Errorf("SizeConverter(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{1.5, "1.5"},
		{2.0, "2"},
		{93.15, "93.15"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHumanizeUsage(t *testing.T) {
	stat := &disk.UsageStat{
		Path:        "/mnt/data",
		Total:       1024 * 1024 * 1024,
		Used:        512 * 1024 * 1024,
		Free:        512 * 1024 * 1024,
		UsedPercent: 50.0,
	}

	usage := HumanizeUsage(stat)
	if usage.Total != "1 GB" {
		t.Errorf("Total = %q, want 1 GB", usage.Total)
	}
	if usage.Used != "512 MB" || usage.Free != "512 MB" {
		t.Errorf("Used/Free = %q/%q, want 512 MB each", usage.Used, usage.Free)
	}
	if usage.Percent != 50 {
		t.Errorf("Percent = %v, want 50", usage.Percent)
	}
}
