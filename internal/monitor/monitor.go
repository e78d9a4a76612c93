// Package monitor drives a full health pass: acquire the udisks dump,
// correlate drives with block devices, attach filesystem usage, evaluate
// metric rules and fan out notifications.
package monitor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/nuclearlighters/diskmon/internal/config"
	"github.com/nuclearlighters/diskmon/internal/history"
	"github.com/nuclearlighters/diskmon/internal/metrics"
	"github.com/nuclearlighters/diskmon/internal/notify"
	"github.com/nuclearlighters/diskmon/internal/partitions"
	"github.com/nuclearlighters/diskmon/internal/report"
	"github.com/nuclearlighters/diskmon/internal/smartctl"
	"github.com/nuclearlighters/diskmon/internal/udisk"
)

const alertTitle = "Disk Monitor Alert!!"

// Runner executes monitor passes.
type Runner struct {
	cfg      *config.Settings
	notifier *notify.Service
	store    *history.Store
}

// New creates a Runner. The store may be nil when history is disabled.
func New(cfg *config.Settings, notifier *notify.Service, store *history.Store) *Runner {
	return &Runner{cfg: cfg, notifier: notifier, store: store}
}

// Result holds the outcome of one pass.
type Result struct {
	Disks     []udisk.Disk    `json:"disks"`
	Unmatched udisk.Unmatched `json:"unmatched"`
	Alerts    []string        `json:"alerts"`
	StartedAt time.Time       `json:"started_at"`
}

// dump runs udisksctl and returns its output. Failures degrade to an
// empty dump so the smartctl fallback can still produce data.
func (r *Runner) dump(ctx context.Context) string {
	if r.cfg.DryRun {
		data, err := os.ReadFile(r.cfg.SampleDump)
		if err != nil {
			log.Error().Err(err).Str("path", r.cfg.SampleDump).Msg("Failed to read sample dump")
			return ""
		}
		return string(data)
	}

	out, err := exec.CommandContext(ctx, r.cfg.UdisksCtl, "dump").Output()
	if err != nil {
		log.Error().Err(err).Str("command", r.cfg.UdisksCtl).Msg("udisksctl dump failed")
		return ""
	}
	return string(out)
}

// listPartitions returns the physical partitions to monitor.
func (r *Runner) listPartitions(ctx context.Context) ([]disk.PartitionStat, error) {
	if r.cfg.DryRun {
		return partitions.LoadSample(r.cfg.SamplePartitions)
	}
	return partitions.List(ctx)
}

// Collect gathers disk state without evaluating rules or notifying.
func (r *Runner) Collect(ctx context.Context) ([]udisk.Disk, udisk.Unmatched, error) {
	parts, err := r.listPartitions(ctx)
	if err != nil {
		return nil, udisk.Unmatched{}, fmt.Errorf("failed to list partitions: %w", err)
	}
	devices := partitions.DeviceNames(parts)
	mounts := partitions.Mountpoints(parts)

	text := r.dump(ctx)
	parsed := udisk.Parse(text, devices)

	disks, unmatched, err := udisk.Correlate(parsed, udisk.Options{Strict: r.cfg.Strict})
	if err != nil {
		return nil, unmatched, err
	}

	if len(disks) == 0 && r.cfg.SmartctlPath != "" {
		disks = r.collectSmartctl(ctx, devices)
	}

	r.attachUsage(ctx, disks, mounts)
	return disks, unmatched, nil
}

// collectSmartctl builds disks from smartctl output when the udisks dump
// yielded nothing, typically on systems without udisks2.
func (r *Runner) collectSmartctl(ctx context.Context, devices []string) []udisk.Disk {
	var disks []udisk.Disk
	for _, dev := range devices {
		out := smartctl.Collect(ctx, r.cfg.SmartctlPath, "/dev/"+dev)
		if out == nil {
			continue
		}
		info := out.Info()
		disks = append(disks, udisk.Disk{
			ID:         dev,
			Model:      info["Model"],
			Info:       info,
			Attributes: out.Attributes(),
		})
	}
	return disks
}

// attachUsage fills in filesystem usage for disks whose partitions are
// mounted. Missing mounts are skipped quietly.
func (r *Runner) attachUsage(ctx context.Context, disks []udisk.Disk, mounts map[string]string) {
	for i := range disks {
		for _, part := range disks[i].Partitions {
			mp := mounts[part.Fields["Device"]]
			if mp == "" {
				mp = mounts["/dev/"+part.ID]
			}
			if mp == "" {
				mp = part.Fields["MountPoints"]
			}
			if mp == "" {
				continue
			}
			stat, err := disk.UsageWithContext(ctx, mp)
			if err != nil {
				if !r.cfg.DryRun {
					log.Debug().Err(err).Str("mountpoint", mp).Msg("Failed to read usage")
				}
				continue
			}
			usage := report.HumanizeUsage(stat)
			disks[i].Usage = &usage
			break
		}
	}
}

// Run executes one full monitor pass.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	disks, unmatched, err := r.Collect(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range disks {
		if len(d.Attributes) == 0 {
			name := d.Model
			if name == "" {
				name = d.ID
			}
			log.Warn().Str("disk", name).Msgf("No attributes were loaded for %s", name)
		}
	}

	message, alerted := metrics.Aggregate(disks, r.cfg.Metrics)
	res := &Result{Disks: disks, Unmatched: unmatched, StartedAt: started}
	if alerted {
		res.Alerts = splitLines(message)
		r.notifier.Send(ctx, alertTitle, message)
	}

	if r.store != nil {
		if _, err := r.store.RecordPass(ctx, started, len(disks), res.Alerts); err != nil {
			log.Error().Err(err).Msg("Failed to record monitor pass")
		}
	}

	if r.cfg.DiskReport {
		if _, err := report.WriteFile(disks, r.cfg.ReportDir, r.cfg.ReportFile); err != nil {
			log.Error().Err(err).Msg("Failed to write disk report")
		} else {
			r.mailReport(disks)
		}
	}

	log.Info().
		Int("disks", len(disks)).
		Int("alerts", len(res.Alerts)).
		Dur("elapsed", time.Since(started)).
		Msg("Monitor pass complete")
	return res, nil
}

// mailReport emails the rendered report when a recipient is configured.
func (r *Runner) mailReport(disks []udisk.Disk) {
	if r.cfg.Recipient == "" || r.cfg.GmailUser == "" {
		return
	}
	html, err := report.Render(disks, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to render report for email")
		return
	}
	if err := r.notifier.SendReport("Disk Report", html); err != nil {
		log.Error().Err(err).Msg("Failed to email disk report")
	}
}

// Report renders the HTML report for the current disk state.
func (r *Runner) Report(ctx context.Context) (string, error) {
	disks, _, err := r.Collect(ctx)
	if err != nil {
		return "", err
	}
	return report.Render(disks, time.Now())
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
