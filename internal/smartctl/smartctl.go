// Package smartctl shells out to smartctl and adapts its structured
// JSON output into the flat attribute mapping the evaluator consumes.
// It is the input path for hosts without udisks2.
package smartctl

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Device identifies the probed device node.
type Device struct {
	Name     string `json:"name"`
	InfoName string `json:"info_name"`
	Type     string `json:"type"`
	Protocol string `json:"protocol"`
}

// SmartStatus is the overall self-assessment result.
type SmartStatus struct {
	Passed *bool `json:"passed"`
}

// SmartSupport reports SMART availability on the device.
type SmartSupport struct {
	Available *bool `json:"available"`
	Enabled   *bool `json:"enabled"`
}

// Temperature is the current device temperature in Celsius.
type Temperature struct {
	Current *float64 `json:"current"`
}

// PowerOnTime is the accumulated powered-on time.
type PowerOnTime struct {
	Hours *int64 `json:"hours"`
}

// NvmeHealthLog is the NVMe health information log page.
type NvmeHealthLog struct {
	CriticalWarning *int64 `json:"critical_warning"`
	Temperature     *int64 `json:"temperature"`
	AvailableSpare  *int64 `json:"available_spare"`
	PercentageUsed  *int64 `json:"percentage_used"`
	MediaErrors     *int64 `json:"media_errors"`
	UnsafeShutdowns *int64 `json:"unsafe_shutdowns"`
}

// Output is the subset of smartctl's JSON document the monitor reads.
type Output struct {
	Device          *Device        `json:"device"`
	ModelName       string         `json:"model_name"`
	SerialNumber    string         `json:"serial_number"`
	FirmwareVersion string         `json:"firmware_version"`
	SmartStatus     *SmartStatus   `json:"smart_status"`
	SmartSupport    *SmartSupport  `json:"smart_support"`
	Temperature     *Temperature   `json:"temperature"`
	PowerOnTime     *PowerOnTime   `json:"power_on_time"`
	PowerCycleCount *int64         `json:"power_cycle_count"`
	NvmeHealthLog   *NvmeHealthLog `json:"nvme_smart_health_information_log"`
}

// Collect probes one device. A non-zero exit status is expected for
// failing drives and is only logged; an undecodable document degrades
// to an empty Output so evaluation proceeds vacuously.
func Collect(ctx context.Context, smartctlPath, device string) *Output {
	cmd := exec.CommandContext(ctx, smartctlPath, "-a", device, "--json")
	raw, err := cmd.Output()
	if err != nil {
		// smartctl encodes warnings in its exit status but still emits
		// a JSON document on stdout.
		log.Debug().Err(err).Str("device", device).Msg("smartctl returned non-zero exit code")
	}

	out := &Output{}
	if jsonErr := json.Unmarshal(raw, out); jsonErr != nil {
		log.Error().Err(jsonErr).Str("device", device).Msg("Failed to decode JSON output from smartctl")
		out = &Output{}
	}
	if out.Device == nil {
		out.Device = &Device{Name: device, InfoName: device}
	}
	return out
}

// Attributes flattens the document into the dump-style attribute
// mapping the evaluator understands. Absent sections contribute no keys.
func (o *Output) Attributes() map[string]string {
	attrs := make(map[string]string)
	if s := o.SmartSupport; s != nil {
		if s.Available != nil {
			attrs["SmartSupported"] = strconv.FormatBool(*s.Available)
		}
		if s.Enabled != nil {
			attrs["SmartEnabled"] = strconv.FormatBool(*s.Enabled)
		}
	}
	if s := o.SmartStatus; s != nil && s.Passed != nil {
		attrs["SmartFailing"] = strconv.FormatBool(!*s.Passed)
	}
	if t := o.Temperature; t != nil && t.Current != nil {
		attrs["SmartTemperature"] = strconv.FormatFloat(*t.Current, 'f', -1, 64)
	}
	if p := o.PowerOnTime; p != nil && p.Hours != nil {
		attrs["SmartPowerOnSeconds"] = strconv.FormatInt(*p.Hours*3600, 10)
	}
	if n := o.NvmeHealthLog; n != nil && n.MediaErrors != nil {
		attrs["SmartNumBadSectors"] = strconv.FormatInt(*n.MediaErrors, 10)
	}
	return attrs
}

// Info flattens the identifying fields into a dump-style Info mapping.
func (o *Output) Info() map[string]string {
	info := make(map[string]string)
	if o.ModelName != "" {
		info["Model"] = o.ModelName
	}
	if o.SerialNumber != "" {
		info["Serial"] = o.SerialNumber
	}
	if o.FirmwareVersion != "" {
		info["Revision"] = o.FirmwareVersion
	}
	if o.Device != nil && o.Device.Protocol != "" {
		info["ConnectionBus"] = o.Device.Protocol
	}
	return info
}
