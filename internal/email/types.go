package email

// Email is an outgoing message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData feeds the html templates.
type TemplateData map[string]interface{}

// WelcomeParams carries everything the post-payment welcome email needs.
type WelcomeParams struct {
	To             string
	FullName       string
	ApplicationID  string
	SetPasswordURL string
}
