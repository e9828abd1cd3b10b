package app

import (
	"japa_backend/internal/email"
	"japa_backend/internal/logger"
)

// MockEmailProvider logs messages instead of sending them. Used when email
// delivery is disabled.
type MockEmailProvider struct{}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{}
}

func (m *MockEmailProvider) Send(msg *email.Email) error {
	logger.Info("mock email send",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

func (m *MockEmailProvider) SendWelcome(params email.WelcomeParams) error {
	logger.Info("mock welcome email",
		"to", params.To,
		"application_id", params.ApplicationID,
		"set_password_url", params.SetPasswordURL,
	)
	return nil
}
