package smartctl

import (
	"encoding/json"
	"testing"
)

const sampleOutput = `{
  "json_format_version": [1, 0],
  "device": {"name": "/dev/nvme0", "info_name": "/dev/nvme0", "type": "nvme", "protocol": "NVMe"},
  "model_name": "Samsung SSD 980 1TB",
  "serial_number": "S649NX0T123456",
  "firmware_version": "2B4QFXO7",
  "smart_status": {"passed": true},
  "smart_support": {"available": true, "enabled": true},
  "temperature": {"current": 38},
  "power_on_time": {"hours": 1234},
  "power_cycle_count": 456,
  "nvme_smart_health_information_log": {
    "critical_warning": 0,
    "temperature": 38,
    "available_spare": 100,
    "percentage_used": 3,
    "media_errors": 0,
    "unsafe_shutdowns": 12
  }
}`

func TestAttributesFlattening(t *testing.T) {
	var out Output
	if err := json.Unmarshal([]byte(sampleOutput), &out); err != nil {
		t.Fatalf("decoding sample: %v", err)
	}

	attrs := out.Attributes()
	tests := []struct {
		key  string
		want string
	}{
		{"SmartEnabled", "true"},
		{"SmartSupported", "true"},
		{"SmartFailing", "false"},
		{"SmartTemperature", "38"},
		{"SmartPowerOnSeconds", "4442400"},
		{"SmartNumBadSectors", "0"},
	}
	for _, tt := range tests {
		if got := attrs[tt.key]; got != tt.want {
			t.Errorf("Attributes()[%s] = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestAttributesFailingDrive(t *testing.T) {
	passed := false
	out := Output{SmartStatus: &SmartStatus{Passed: &passed}}

	if got := out.Attributes()["SmartFailing"]; got != "true" {
		t.Errorf("SmartFailing = %q, want true when the self-assessment failed", got)
	}
}

func TestAttributesEmptyDocument(t *testing.T) {
	out := Output{}
	if attrs := out.Attributes(); len(attrs) != 0 {
		t.Errorf("Attributes() = %v, want empty for an empty document", attrs)
	}
}

func TestInfo(t *testing.T) {
	var out Output
	if err := json.Unmarshal([]byte(sampleOutput), &out); err != nil {
		t.Fatalf("decoding sample: %v", err)
	}

	info := out.Info()
	if info["Model"] != "Samsung SSD 980 1TB" {
		t.Errorf("Info()[Model] = %q, want model name", info["Model"])
	}
	if info["ConnectionBus"] != "NVMe" {
		t.Errorf("Info()[ConnectionBus] = %q, want NVMe", info["ConnectionBus"])
	}
}
