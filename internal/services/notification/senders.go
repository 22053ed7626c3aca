package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"
)

// SMTPConfig configures the email sender. Empty Host disables the channel.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpSender struct {
	cfg SMTPConfig
}

// NewSMTPSender returns an SMTP-backed EmailSender, or nil when no host is
// configured so the caller treats the channel as unavailable.
func NewSMTPSender(cfg SMTPConfig) EmailSender {
	if cfg.Host == "" {
		return nil
	}
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// SMSConfig configures the HTTP SMS gateway. Empty URL disables the channel.
type SMSConfig struct {
	URL    string
	APIKey string
	Sender string
}

type httpSMSSender struct {
	cfg    SMSConfig
	client *http.Client
}

// NewHTTPSMSSender returns an SMSSender posting to a provider gateway, or
// nil when no gateway is configured.
func NewHTTPSMSSender(cfg SMSConfig) SMSSender {
	if cfg.URL == "" {
		return nil
	}
	return &httpSMSSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *httpSMSSender) Send(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(map[string]string{
		"to":   to,
		"from": s.cfg.Sender,
		"body": body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}
