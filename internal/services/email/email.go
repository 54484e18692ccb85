// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers transactional mail over SMTP. Delivery failures are
// surfaced to the caller; there is no queueing or retry.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
	"codeberg.org/oliverandrich/atelier-api/internal/config"
)

// Sender is the delivery capability the auth core depends on.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, link string) error
	SendVerificationOtp(ctx context.Context, to, code string) error
	SendResetPasswordURL(ctx context.Context, to, link string) error
}

// Service sends mail via SMTP using go-mail.
type Service struct {
	cfg *config.SMTPConfig
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &Service{cfg: cfg}, nil
}

// SendVerificationEmail sends the email-confirmation link.
func (s *Service) SendVerificationEmail(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(
		"Welcome!\n\nPlease verify your email address by opening the link below:\n\n%s\n\nIf you did not create an account, you can ignore this message.\n",
		link)
	return s.send(ctx, to, "Verify your email", body)
}

// SendVerificationOtp sends the one-time numeric code.
func (s *Service) SendVerificationOtp(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(
		"Your verification code is:\n\n%s\n\nThe code expires in 5 minutes.\n",
		code)
	return s.send(ctx, to, "Your verification code", body)
}

// SendResetPasswordURL sends the password-reset link.
func (s *Service) SendResetPasswordURL(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nOpen the link below to choose a new password:\n\n%s\n\nThe link expires in one hour. If you did not request a reset, you can ignore this message.\n",
		link)
	return s.send(ctx, to, "Reset your password", body)
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return apperror.New(apperror.KindEmailDelivery, "failed to send email to %s", redact(to))
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return apperror.New(apperror.KindEmailDelivery, "failed to send email to %s", redact(to))
	}

	return nil
}

// redact keeps logs and error messages from echoing full addresses.
func redact(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 1 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
