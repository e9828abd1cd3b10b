package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// TemplateManager keeps parsed html templates and renders them on demand.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}

	// Built-in templates. Parse errors here are programmer mistakes.
	if err := tm.AddTemplate(TemplateWelcome, welcomeTemplate); err != nil {
		panic(err)
	}

	return tm
}

// Render executes a named template with the given data.
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate parses and registers a template.
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

const TemplateWelcome = "welcome"

const welcomeTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #1a5632; padding: 24px; text-align: center;">
    <h1 style="color: #ffffff; margin: 0;">Developing Africa</h1>
  </div>
  <div style="padding: 24px;">
    <h2>Welcome, {{.FullName}}!</h2>
    <p>Your payment has been received and your application <strong>{{.ApplicationID}}</strong> is now under review.</p>
    <p>An account has been created for you. Set your password to track your application status:</p>
    <p style="text-align: center; margin: 32px 0;">
      <a href="{{.SetPasswordURL}}" style="background-color: #1a5632; color: #ffffff; padding: 12px 32px; text-decoration: none; border-radius: 4px;">Set Your Password</a>
    </p>
    <p>This link expires in 24 hours. If it has expired, you can request a new one from the sign-in page.</p>
    <p>If you did not make this application, please ignore this email.</p>
  </div>
  <div style="padding: 16px; text-align: center; color: #888; font-size: 12px;">
    <p>Developing Africa · International Opportunities</p>
  </div>
</body>
</html>`
