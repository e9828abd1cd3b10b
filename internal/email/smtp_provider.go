package email

import (
	"fmt"

	"japa_backend/internal/config"
	"japa_backend/internal/logger"

	"gopkg.in/gomail.v2"
)

// SMTPProvider delivers mail over SMTP via gomail. When delivery is
// disabled in config it logs the message and reports success, so local
// environments work without an SMTP account.
type SMTPProvider struct {
	cfg      *config.Config
	renderer *TemplateManager
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{
		cfg:      cfg,
		renderer: NewTemplateManager(),
	}
}

func (p *SMTPProvider) Send(msg *Email) error {
	if !p.cfg.Email.Enabled {
		logger.Info("email delivery disabled, skipping send",
			"to", msg.To,
			"subject", msg.Subject,
		)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(p.cfg.Email.FromEmail, p.cfg.Email.FromName))
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTMLBody != "" {
		m.SetBody("text/html", msg.HTMLBody)
		if msg.Body != "" {
			m.AddAlternative("text/plain", msg.Body)
		}
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	d := gomail.NewDialer(
		p.cfg.Email.SMTPHost,
		p.cfg.Email.SMTPPort,
		p.cfg.Email.SMTPUsername,
		p.cfg.Email.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (p *SMTPProvider) SendWelcome(params WelcomeParams) error {
	htmlBody, err := p.renderer.Render(TemplateWelcome, TemplateData{
		"FullName":       params.FullName,
		"ApplicationID":  params.ApplicationID,
		"SetPasswordURL": params.SetPasswordURL,
	})
	if err != nil {
		return err
	}

	return p.Send(&Email{
		To:       []string{params.To},
		Subject:  "Welcome to Developing Africa - Complete Your Account Setup",
		HTMLBody: htmlBody,
		Body: fmt.Sprintf(
			"Welcome, %s! Your application %s is under review. Set your password: %s",
			params.FullName, params.ApplicationID, params.SetPasswordURL,
		),
	})
}
