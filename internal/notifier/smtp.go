// Package notifier relays accepted submissions by email. The relay is
// advisory: the pipeline treats every error here as log-and-continue.
package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"contact-service/internal/config"
	"contact-service/internal/model"
)

const (
	dialTimeout    = 10 * time.Second
	sessionTimeout = 30 * time.Second
)

// SMTPNotifier sends a plain-text mail per submission over STARTTLS.
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPNotifier creates a notifier from the relay configuration.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// Notify delivers the submission to the configured recipient. The
// whole SMTP session runs under a connection deadline so an unreachable
// or stalled relay cannot hold up request handling.
func (n *SMTPNotifier) Notify(ctx context.Context, sub *model.Submission) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Server, n.cfg.Port)

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("SMTP connect to %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(sessionTimeout))

	c, err := smtp.NewClient(conn, n.cfg.Server)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Server}); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	}

	if n.cfg.Username != "" && n.cfg.Password != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Server)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth: %w", err)
		}
	}

	if err := c.Mail(n.cfg.Username); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(n.cfg.Recipient); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(BuildMessage(n.cfg.Username, n.cfg.Recipient, sub)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("DATA close: %w", err)
	}
	return c.Quit()
}

// BuildMessage renders the notification mail. Subject and body keep
// the legacy wording.
func BuildMessage(from, to string, sub *model.Submission) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: Yeni mesaj: %s\r\n", sub.Name))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(fmt.Sprintf("Ad və Soyad: %s\n", sub.Name))
	buf.WriteString(fmt.Sprintf("Email: %s\n", sub.Email))
	buf.WriteString(fmt.Sprintf("Mesaj:\n%s\n", sub.Message))
	return buf.Bytes()
}
