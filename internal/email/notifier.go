package email

import (
	"time"

	"recruitsync_backend/internal/logger"
)

// Notifier sends the application's transactional mail.
type Notifier struct {
	provider   Provider
	adminEmail string
}

func NewNotifier(provider Provider, adminEmail string) *Notifier {
	return &Notifier{provider: provider, adminEmail: adminEmail}
}

// NewProvider picks the SMTP provider when configured and the no-op one otherwise.
func NewProvider(cfg *SMTPConfig) Provider {
	if !cfg.Enabled() {
		return NoopProvider{}
	}
	return NewSMTPProvider(cfg, DefaultTemplates())
}

func (n *Notifier) SendWelcome(to, firstName, jobTitle string, startDate time.Time, taskCount int) error {
	return n.provider.SendTemplate([]string{to}, "Welcome to the team", TemplateWelcomeEmployee, TemplateData{
		"FirstName": firstName,
		"JobTitle":  jobTitle,
		"StartDate": startDate.Format("January 2, 2006"),
		"TaskCount": taskCount,
	})
}

// SendReconnectRequired alerts the admin that a platform needs re-authorization.
// Without an admin address it only logs.
func (n *Notifier) SendReconnectRequired(platform, reason string) error {
	if n.adminEmail == "" {
		logger.Warn("Reconnect required, no admin email configured", "platform", platform, "reason", reason)
		return nil
	}
	return n.provider.SendTemplate([]string{n.adminEmail}, platform+" needs to be reconnected", TemplateReconnectRequired, TemplateData{
		"Platform": platform,
		"Reason":   reason,
	})
}
