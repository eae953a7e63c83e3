package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const (
	TemplateWelcomeEmployee   = "welcome_employee"
	TemplateReconnectRequired = "reconnect_required"
)

var builtinTemplates = map[string]string{
	TemplateWelcomeEmployee: `<p>Hi {{.FirstName}},</p>
<p>Welcome aboard{{if .JobTitle}} as {{.JobTitle}}{{end}}! Your start date is {{.StartDate}}.</p>
<p>You have {{.TaskCount}} onboarding task{{if ne .TaskCount 1}}s{{end}} waiting for you.</p>`,
	TemplateReconnectRequired: `<p>The {{.Platform}} integration needs to be reconnected.</p>
<p>Reason: {{.Reason}}</p>
<p>Scheduled syncs for this platform will fail until it is reconnected.</p>`,
}

// TemplateManager keeps parsed html/template templates by name.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{
		templates: make(map[string]*template.Template),
	}
}

// DefaultTemplates returns a manager loaded with the built-in templates.
func DefaultTemplates() *TemplateManager {
	tm := NewTemplateManager()
	for name, body := range builtinTemplates {
		if err := tm.AddTemplate(name, body); err != nil {
			panic(err)
		}
	}
	return tm
}

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

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
