// AngelaMos | 2026
// mailer.go

package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/carterperez-dev/reviewdb/internal/config"
)

// Mailer is the outbound side channel for confirmation codes. Delivery
// failures are the caller's decision to surface or swallow.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	cfg config.EmailConfig
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers a plain-text message. The dial and every read and write
// on the connection share one deadline, so a stalled SMTP server fails
// the call instead of wedging it.
func (m *SMTPMailer) Send(
	ctx context.Context,
	to, subject, body string,
) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.SendTimeout)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("set smtp deadline: %w", err)
		}
	}

	if m.cfg.UseTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: m.cfg.Host})
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth(
			"",
			m.cfg.Username,
			m.cfg.Password,
			m.cfg.Host,
		)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}

	if _, err := w.Write(m.buildMessage(to, subject, body)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}

	return client.Quit()
}

func (m *SMTPMailer) buildMessage(to, subject, body string) []byte {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
			"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n%s",
		from, to, subject, body,
	)

	return []byte(msg)
}
