// Package notify fans alert notifications out to the configured
// channels: ntfy, Telegram, and email/SMS over SMTP. Channels are
// independent; one failing never blocks another and delivery is never
// retried.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nuclearlighters/diskmon/internal/config"
)

// Service dispatches notifications to every channel with credentials
// configured.
type Service struct {
	cfg    *config.Settings
	client *http.Client

	// telegramBase is overridable in tests.
	telegramBase string
}

// New creates a notification Service from the loaded settings.
func New(cfg *config.Settings) *Service {
	return &Service{
		cfg:          cfg,
		client:       &http.Client{Timeout: 10 * time.Second},
		telegramBase: "https://api.telegram.org",
	}
}

// Send dispatches the alert concurrently to every configured channel
// and waits for all of them. Failures are logged per channel; there is
// no partial-success reporting beyond that.
func (s *Service) Send(ctx context.Context, title, message string) {
	var g errgroup.Group

	if s.cfg.NtfyURL != "" && s.cfg.NtfyTopic != "" {
		g.Go(func() error {
			if err := s.ntfy(ctx, title, message); err != nil {
				log.Error().Err(err).Msg("Failed to send ntfy notification")
			} else {
				log.Info().Msg("Ntfy notification sent")
			}
			return nil
		})
	}
	if s.cfg.TelegramBotToken != "" && s.cfg.TelegramChatID != 0 {
		g.Go(func() error {
			if err := s.telegram(ctx, title, message); err != nil {
				log.Error().Err(err).Msg("Failed to send telegram notification")
			} else {
				log.Info().Msg("Telegram notification sent")
			}
			return nil
		})
	}
	if s.cfg.GmailUser != "" && s.cfg.GmailPass != "" && s.cfg.Phone != "" {
		g.Go(func() error {
			if err := s.sms(title, message); err != nil {
				log.Error().Err(err).Msg("Failed to send SMS notification")
			} else {
				log.Info().Msg("SMS notification sent")
			}
			return nil
		})
	}

	// Channel errors are logged above; the join only waits.
	_ = g.Wait()
}
