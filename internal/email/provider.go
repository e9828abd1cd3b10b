package email

// Provider sends transactional email. The SMTP implementation lives in
// smtp_provider.go; tests substitute a recording implementation.
type Provider interface {
	// Send delivers a prepared message.
	Send(msg *Email) error

	// SendWelcome delivers the account-created email with the one-time
	// set-password link after a paid application is finalized.
	SendWelcome(params WelcomeParams) error
}
