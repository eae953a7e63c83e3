package email

import "recruitsync_backend/internal/logger"

// NoopProvider logs messages instead of sending them. Used when SMTP is not
// configured.
type NoopProvider struct{}

func (NoopProvider) Send(email *Email) error {
	logger.Debug("Email not sent, SMTP disabled", "to", email.To, "subject", email.Subject)
	return nil
}

func (p NoopProvider) SendTemplate(to []string, subject string, _ string, _ TemplateData) error {
	return p.Send(&Email{To: to, Subject: subject})
}

func (NoopProvider) Validate() error { return nil }
func (NoopProvider) Close() error    { return nil }
