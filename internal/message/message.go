// internal/message/message.go
//
// Outbound email.
//
// Context
//   The notifier hands fully rendered Email values to a Sender.  Two senders
//   exist: SMTPSender relays through go-mail, and LogSender writes the
//   envelope to the zap log for development sites with no relay configured.
//
// Notes
//   Senders do not retry.  A failed send is the caller's to log.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/yanizio/perks/internal/config"
)

// Email is one rendered outbound message.
type Email struct {
	To      []string
	ReplyTo string // optional
	Subject string
	Text    string
	HTML    string // optional alternative part
}

// Sender delivers an Email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// ErrNoRecipients is returned for an Email with an empty To list.
var ErrNoRecipients = errors.New("message: no recipients")

//------------------------------------------------------------------------------
// SMTP
//------------------------------------------------------------------------------

// SMTPSender relays mail through a single SMTP server.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds a sender from the smtp config block.
func NewSMTPSender(cfg config.SMTP) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	switch cfg.Security {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: c, from: cfg.From}, nil
}

// Send dials the relay and delivers e.
func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	m, err := buildMsg(s.from, e)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMsg(from string, e Email) (*mail.Msg, error) {
	if len(e.To) == 0 {
		return nil, ErrNoRecipients
	}
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("from %q: %w", from, err)
	}
	if err := m.To(e.To...); err != nil {
		return nil, fmt.Errorf("to %v: %w", e.To, err)
	}
	if e.ReplyTo != "" {
		if err := m.ReplyTo(e.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to %q: %w", e.ReplyTo, err)
		}
	}
	m.Subject(e.Subject)
	m.SetBodyString(mail.TypeTextPlain, e.Text)
	if e.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, e.HTML)
	}
	return m, nil
}

//------------------------------------------------------------------------------
// Log-only
//------------------------------------------------------------------------------

// LogSender records the envelope instead of sending.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender logs through l, or the global logger when l is nil.
func NewLogSender(l *zap.SugaredLogger) *LogSender {
	if l == nil {
		l = zap.S()
	}
	return &LogSender{log: l}
}

// Send logs e and succeeds unless it has no recipients.
func (s *LogSender) Send(_ context.Context, e Email) error {
	if len(e.To) == 0 {
		return ErrNoRecipients
	}
	s.log.Infow("email (not sent)",
		"to", e.To, "subject", e.Subject, "text_len", len(e.Text), "html", e.HTML != "")
	return nil
}

// NewSender picks SMTPSender when a host is configured, else LogSender.
func NewSender(cfg config.SMTP) (Sender, error) {
	if cfg.Host == "" {
		zap.S().Warn("smtp.host empty, notifications will only be logged")
		return NewLogSender(nil), nil
	}
	return NewSMTPSender(cfg)
}
