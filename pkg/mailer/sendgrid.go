package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Config contains credentials and sender identity for outgoing mail.
type Config struct {
	APIKey      string
	FromName    string
	FromAddress string
}

// Service sends transactional email through Sendgrid.
type Service struct {
	client *sendgrid.Client
	from   *mail.Email
	logger zerolog.Logger
}

// New constructs a Sendgrid mail service.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key must be provided")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mail from address must be provided")
	}

	return &Service{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
		logger: logger.With().Str("component", "mailer").Logger(),
	}, nil
}

// Send delivers one message. The body is rendered as HTML.
func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), body, body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("mail rejected with status %d", response.StatusCode)
	}

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("mail accepted")
	return nil
}
