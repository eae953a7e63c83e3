package platforms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instant(c Client) Client {
	switch v := c.(type) {
	case *demoClient:
		v.latency = 0
	case oauthDemoClient:
		v.latency = 0
	}
	return c
}

func TestDemoClients_ValidateCredentials(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		client Client
		good   string
		bad    []string
	}{
		{instant(NewIndeedClient()), "indeed-abc123", []string{"", "indeed-", "abc123", "INDEED-abc123"}},
		{instant(NewHandshakeClient()), "hs_12345678", []string{"hs_1", "hh-12345678"}},
		{instant(NewHeadHunterClient()), "hh-0011223", []string{"hh-", "indeed-abc123"}},
		{instant(NewLinkedInClient()), "AQXdSP_W8yZ0lI", []string{"AQ", "aqXdSP_W8yZ0lI"}},
	}

	for _, tt := range tests {
		t.Run(tt.client.Name(), func(t *testing.T) {
			assert.True(t, tt.client.ValidateCredentials(ctx, tt.good))
			for _, bad := range tt.bad {
				assert.False(t, tt.client.ValidateCredentials(ctx, bad), bad)
			}
		})
	}
}

func TestDemoClient_FetchRequiresToken(t *testing.T) {
	client := instant(NewIndeedClient())

	_, err := client.FetchCandidates(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	batch, err := client.FetchCandidates(context.Background(), "indeed-abc123")
	require.NoError(t, err)
	require.NotEmpty(t, batch)
	for _, c := range batch {
		assert.Equal(t, Indeed, c.Source)
		assert.NotEmpty(t, c.Email)
	}
}

func TestDemoClient_FetchIsDeterministic(t *testing.T) {
	client := instant(NewHeadHunterClient())

	first, err := client.FetchCandidates(context.Background(), "hh-0011223")
	require.NoError(t, err)
	second, err := client.FetchCandidates(context.Background(), "hh-0011223")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDemoClient_HonoursCancellation(t *testing.T) {
	client := NewIndeedClient()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := client.FetchCandidates(ctx, "indeed-abc123")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, client.ValidateCredentials(ctx, "indeed-abc123"))
}

func TestOAuthProviderOf(t *testing.T) {
	assert.Equal(t, "linkedin", OAuthProviderOf(NewLinkedInClient()))
	assert.Equal(t, "", OAuthProviderOf(NewIndeedClient()))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "new@x.com", NormalizeEmail("  New@X.com "))
}
