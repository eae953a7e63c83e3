package platforms

import (
	"context"
	"strings"
	"time"
)

const defaultDemoLatency = 150 * time.Millisecond

// demoClient is an in-process stand-in for a platform API. It satisfies the
// same contract as a real client so one can replace it without other changes.
type demoClient struct {
	name      string
	prefix    string
	minLength int
	provider  string
	latency   time.Duration
	batch     func(source string) []ExternalCandidate
}

func (c *demoClient) Name() string { return c.name }

func (c *demoClient) ValidateCredentials(ctx context.Context, credential string) bool {
	if err := c.wait(ctx); err != nil {
		return false
	}
	return c.wellFormed(credential)
}

func (c *demoClient) FetchCandidates(ctx context.Context, accessToken string) ([]ExternalCandidate, error) {
	if !c.wellFormed(accessToken) {
		return nil, ErrUnauthenticated
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.batch(c.name), nil
}

func (c *demoClient) wellFormed(credential string) bool {
	credential = strings.TrimSpace(credential)
	return len(credential) >= c.minLength && strings.HasPrefix(credential, c.prefix)
}

// wait simulates network latency and gives up when ctx ends.
func (c *demoClient) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// oauthDemoClient adds the OAuth provider name to a demo client.
type oauthDemoClient struct {
	*demoClient
}

func (c oauthDemoClient) OAuthProvider() string { return c.provider }
