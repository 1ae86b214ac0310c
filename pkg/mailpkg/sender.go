// Package mailpkg delivers one-time passwords and other notifications by email.
package mailpkg

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Supported mail backends.
const (
	BackendSMTP    = "smtp"
	BackendConsole = "console"
)

// ErrUnsupportedBackend is returned by New for an unknown backend name.
var ErrUnsupportedBackend = errors.New("unsupported mail backend")

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends messages through an SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail.NewClient: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()

	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}

	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("client.DialAndSendWithContext: %w", err)
	}

	return nil
}

// ConsoleSender writes messages to the logger instead of sending them.
// Used in development.
type ConsoleSender struct {
	logger zerolog.Logger
}

// NewConsoleSender creates a new ConsoleSender.
func NewConsoleSender(logger zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

// Send implements Sender.
func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail")

	return nil
}

// New returns the Sender for the given backend.
func New(backend string, cfg SMTPConfig, logger zerolog.Logger) (Sender, error) {
	switch backend {
	case BackendSMTP:
		return NewSMTPSender(cfg)
	case BackendConsole, "":
		return NewConsoleSender(logger), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
}
