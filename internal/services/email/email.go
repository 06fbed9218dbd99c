// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Package email sends account lifecycle notifications via SMTP.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/config"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// Service renders and sends lifecycle emails. When no SMTP host is
// configured it runs in simulation mode: mails are logged instead of
// sent, and sends always succeed.
type Service struct {
	cfg         *config.SMTPConfig
	frontendURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, frontendURL string) *Service {
	return &Service{
		cfg:         cfg,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

// SendVerification sends the email-ownership verification link.
func (s *Service) SendVerification(ctx context.Context, toEmail, name, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, url.QueryEscape(token))

	body, err := render("verification.html.tmpl", map[string]any{
		"Name":      name,
		"VerifyURL": verifyURL,
	})
	if err != nil {
		return err
	}

	return s.send(ctx, toEmail, "Verify Your Email - IIoT Security Dashboard", body)
}

// SendApproval notifies the user that an admin approved the account.
func (s *Service) SendApproval(ctx context.Context, toEmail, name string) error {
	body, err := render("approved.html.tmpl", map[string]any{
		"Name":     name,
		"LoginURL": s.frontendURL + "/login",
	})
	if err != nil {
		return err
	}

	return s.send(ctx, toEmail, "Account Approved - IIoT Security Dashboard", body)
}

// SendDecline notifies the user that an admin declined the account.
// Reason is optional.
func (s *Service) SendDecline(ctx context.Context, toEmail, name, reason string) error {
	body, err := render("declined.html.tmpl", map[string]any{
		"Name":   name,
		"Reason": reason,
	})
	if err != nil {
		return err
	}

	return s.send(ctx, toEmail, "Account Registration Declined - IIoT Security Dashboard", body)
}

func render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// send delivers a single HTML mail via SMTP using go-mail.
func (s *Service) send(ctx context.Context, to, subject, body string) error {
	if s.cfg.Host == "" {
		slog.Info("mail_simulated", "to", to, "subject", subject)
		return nil
	}

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
	msg.SetBodyString(mail.TypeTextHTML, body)

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
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
