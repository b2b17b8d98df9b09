// Package mailer delivers transactional mail over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
	"github.com/wneessen/go-mail"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// New returns an SMTP sender, or a sender that only logs when no SMTP host
// is configured.
func New(cfg config.SMTP, log logging.Logger) Sender {
	if cfg.Host == "" {
		log.Warn(context.Background(), "SMTP not configured, emails will be skipped")
		return &NoopSender{log: log}
	}
	return &SMTPSender{cfg: cfg, log: log}
}

// SMTPSender opens a connection per message.
type SMTPSender struct {
	cfg config.SMTP
	log logging.Logger
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	msg, err := buildMessage(s.cfg.From, to, subject, html)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	s.log.Debug(ctx, "mail sent", "to", to, "subject", subject)
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(s.cfg.Port)}

	if s.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func buildMessage(from, to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

// NoopSender drops messages.
type NoopSender struct {
	log logging.Logger
}

func (s *NoopSender) Send(ctx context.Context, to, subject, _ string) error {
	s.log.Info(ctx, "skipping mail", "to", to, "subject", subject)
	return nil
}
