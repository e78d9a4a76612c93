// Package config provides application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/nuclearlighters/diskmon/internal/metrics"
)

// Settings holds all application configuration.
type Settings struct {
	// Application metadata
	Version  string `envconfig:"VERSION" default:"0.1.0"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// API server settings
	APIHost string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort int    `envconfig:"API_PORT" default:"9010"`

	// External tool paths
	UdisksCtl    string `envconfig:"UDISKSCTL_PATH" default:"/usr/bin/udisksctl"`
	SmartctlPath string `envconfig:"SMARTCTL_PATH" default:"/usr/sbin/smartctl"`

	// Dry-run replays recorded samples instead of touching the system
	DryRun           bool   `envconfig:"DRY_RUN" default:"false"`
	SampleDump       string `envconfig:"SAMPLE_DUMP" default:"dump.txt"`
	SamplePartitions string `envconfig:"SAMPLE_PARTITIONS" default:"partitions.json"`

	// Strict escalates drive/block-device identity conflicts to errors
	Strict bool `envconfig:"STRICT" default:"false"`

	// Threshold rules: YAML file takes priority over the inline JSON value
	MetricsFile string `envconfig:"METRICS_FILE" default:""`
	MetricsJSON string `envconfig:"METRICS" default:""`

	// Ntfy notifications
	NtfyURL      string `envconfig:"NTFY_URL" default:""`
	NtfyTopic    string `envconfig:"NTFY_TOPIC" default:""`
	NtfyUsername string `envconfig:"NTFY_USERNAME" default:""`
	NtfyPassword string `envconfig:"NTFY_PASSWORD" default:""`

	// Telegram notifications
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" default:"0"`
	TelegramThreadID int64  `envconfig:"TELEGRAM_THREAD_ID" default:"0"`

	// Email / SMS-over-email notifications
	SMTPHost   string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort   int    `envconfig:"SMTP_PORT" default:"587"`
	GmailUser  string `envconfig:"GMAIL_USER" default:""`
	GmailPass  string `envconfig:"GMAIL_PASS" default:""`
	Recipient  string `envconfig:"RECIPIENT" default:""`
	Phone      string `envconfig:"PHONE" default:""`
	SMSGateway string `envconfig:"SMS_GATEWAY" default:"tmomail.net"`

	// Report output
	DiskReport bool   `envconfig:"DISK_REPORT" default:"true"`
	ReportDir  string `envconfig:"REPORT_DIR" default:"report"`
	ReportFile string `envconfig:"REPORT_FILE" default:"disk_report_01-02-2006_03.04_PM.html"`

	// History database
	DatabasePath string `envconfig:"DATABASE_PATH" default:"/var/lib/diskmon/diskmon.db"`

	// Metrics is loaded and validated from MetricsFile or MetricsJSON.
	Metrics []metrics.Rule `ignored:"true"`
}

// ListenAddr returns the address string for the HTTP server to bind to.
func (s *Settings) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.APIHost, s.APIPort)
}

// Load creates a new Settings instance from environment variables and
// loads the threshold rules. Nothing in the core reads ambient state;
// the rule set travels through this struct as an explicit argument.
func Load() (*Settings, error) {
	s := &Settings{}
	if err := envconfig.Process("DISKMON", s); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	rules, err := loadRules(s)
	if err != nil {
		return nil, err
	}
	s.Metrics = rules
	return s, nil
}
