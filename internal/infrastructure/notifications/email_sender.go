package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/pkg/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers email through an SMTP relay
type SMTPSender struct {
	addr     string
	host     string
	user     string
	pass     string
	from     string
	sendMail sendMailFunc
}

// NewSMTPSender creates an SMTP sender from config
func NewSMTPSender(cfg *config.EmailConfig) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST must be set")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("EMAIL_FROM must be set")
	}
	return &SMTPSender{
		addr:     cfg.SMTPAddr(),
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		pass:     cfg.SMTPPass,
		from:     cfg.From,
		sendMail: smtp.SendMail,
	}, nil
}

// Send implements providers.EmailSender
func (s *SMTPSender) Send(ctx context.Context, msg providers.EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := s.sendMail(s.addr, auth, s.from, []string{msg.To}, buildEmail(s.from, msg.To, msg.Subject, msg.Body)); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

// LogSender logs email instead of sending it; used in development
type LogSender struct{}

// NewLogSender creates a log-only sender
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send implements providers.EmailSender
func (LogSender) Send(ctx context.Context, msg providers.EmailMessage) error {
	log.Ctx(ctx).Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("[DEV] email not sent")
	return nil
}

// NewSender picks the SMTP sender unless dev mode is on or SMTP is unconfigured
func NewSender(cfg *config.EmailConfig) providers.EmailSender {
	if cfg.DevMode || cfg.SMTPHost == "" {
		return NewLogSender()
	}
	sender, err := NewSMTPSender(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("SMTP sender unavailable, logging email instead")
		return NewLogSender()
	}
	return sender
}

func buildEmail(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", sanitizeHeader(subject)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
