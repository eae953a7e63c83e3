package email

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func newTestProvider() (*SMTPProvider, *captureDialer) {
	p := NewSMTPProvider(&SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		FromEmail: "hr@example.com",
		FromName:  "HR",
	}, DefaultTemplates())
	d := &captureDialer{}
	p.dialer = d
	return p, d
}

func TestSMTPProvider_SendTemplate(t *testing.T) {
	p, d := newTestProvider()
	n := NewNotifier(p, "admin@example.com")

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, n.SendWelcome("ada@example.com", "Ada", "Engineer", start, 3))
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{`"HR" <hr@example.com>`}, msg.GetHeader("From"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "March 4, 2024")
	assert.Contains(t, buf.String(), "3 onboarding tasks")
}

func TestNotifier_ReconnectWithoutAdmin(t *testing.T) {
	p, d := newTestProvider()
	n := NewNotifier(p, "")

	require.NoError(t, n.SendReconnectRequired("LinkedIn Recruiter", "refresh failed"))
	assert.Empty(t, d.sent)
}

func TestSMTPProvider_Errors(t *testing.T) {
	p, d := newTestProvider()
	d.err = errors.New("connection refused")

	err := p.Send(&Email{To: []string{"x@example.com"}, Subject: "s", Body: "b"})
	assert.ErrorContains(t, err, "connection refused")

	assert.Error(t, p.Send(&Email{Subject: "no recipients"}))
	assert.Error(t, p.SendTemplate([]string{"x@example.com"}, "s", "missing", nil))
}

func TestNewProvider(t *testing.T) {
	assert.IsType(t, NoopProvider{}, NewProvider(&SMTPConfig{}))
	assert.IsType(t, &SMTPProvider{}, NewProvider(&SMTPConfig{Host: "smtp", Port: 25, FromEmail: "a@b.c"}))
}
