package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
)

// urljoin joins URL fragments, stripping stray slashes between them.
func urljoin(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed = append(trimmed, strings.Trim(p, "/"))
	}
	return strings.Join(trimmed, "/")
}

func (s *Service) ntfy(ctx context.Context, title, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		urljoin(s.cfg.NtfyURL, s.cfg.NtfyTopic), strings.NewReader(message))
	if err != nil {
		return err
	}
	req.Header.Set("X-Title", title)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.cfg.NtfyUsername != "" && s.cfg.NtfyPassword != "" {
		req.SetBasicAuth(s.cfg.NtfyUsername, s.cfg.NtfyPassword)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ntfy returned status %s", resp.Status)
	}
	return nil
}

func (s *Service) telegram(ctx context.Context, title, message string) error {
	payload := map[string]any{
		"chat_id": s.cfg.TelegramChatID,
		"text":    fmt.Sprintf("*%s*\n\n%s", title, message),
		"parse_mode": "markdown",
		"disable_notification": false,
	}
	if s.cfg.TelegramThreadID != 0 {
		payload["message_thread_id"] = s.cfg.TelegramThreadID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.telegramBase, s.cfg.TelegramBotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram returned status %s", resp.Status)
	}
	return nil
}

// sms delivers the alert through the carrier's email-to-SMS gateway.
func (s *Service) sms(title, message string) error {
	to := s.cfg.Phone + "@" + s.cfg.SMSGateway
	body := fmt.Sprintf("Subject: %s\r\n\r\n%s\r\n", title, message)
	return s.sendMail(to, []byte(body))
}

// SendReport emails the rendered HTML report to the configured
// recipient.
func (s *Service) SendReport(title, html string) error {
	if s.cfg.GmailUser == "" || s.cfg.GmailPass == "" || s.cfg.Recipient == "" {
		return fmt.Errorf("email notification vars not configured")
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.GmailUser)
	fmt.Fprintf(&b, "To: %s\r\n", s.cfg.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", title)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(html)
	return s.sendMail(s.cfg.Recipient, b.Bytes())
}

func (s *Service) sendMail(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.GmailUser, s.cfg.GmailPass, s.cfg.SMTPHost)
	if err := smtp.SendMail(addr, auth, s.cfg.GmailUser, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
