package email

import (
	"time"

	"recruitsync_backend/internal/config"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// ConfigFrom maps the application email section to an SMTPConfig.
func ConfigFrom(cfg *config.Config) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		Timeout:   30 * time.Second,
	}
}

// Enabled reports whether enough is configured to send mail.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != "" && c.FromEmail != ""
}
