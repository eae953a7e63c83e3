// Package platforms holds one client per external recruiting source and the
// registry that maps a stored platform name to its client.
package platforms

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnauthenticated means the platform rejected or never received a
	// usable token. It is distinct from an empty batch.
	ErrUnauthenticated = errors.New("platform rejected the access token")

	// ErrUnsupportedPlatform means no client is registered under the name.
	ErrUnsupportedPlatform = errors.New("platform is not supported")
)

// ExternalCandidate is the common shape every platform maps its records into.
type ExternalCandidate struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	LinkedinURL string   `json:"linkedin_url,omitempty"`
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Source      string   `json:"source"`
}

// NormalizedEmail is the dedup key: trimmed and lower-cased.
func (c ExternalCandidate) NormalizedEmail() string {
	return NormalizeEmail(c.Email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Client is implemented once per external source. Implementations never touch
// persisted state.
type Client interface {
	Name() string

	// ValidateCredentials is a cheap format or liveness check. It returns
	// false on malformed input and never panics.
	ValidateCredentials(ctx context.Context, credential string) bool

	// FetchCandidates returns one finite batch. A missing or rejected token
	// yields ErrUnauthenticated.
	FetchCandidates(ctx context.Context, accessToken string) ([]ExternalCandidate, error)
}

// OAuthClient is a Client whose credentials come from an OAuth provider.
type OAuthClient interface {
	Client
	OAuthProvider() string
}

// OAuthProviderOf returns the OAuth provider a client authenticates with, or "".
func OAuthProviderOf(c Client) string {
	if oc, ok := c.(OAuthClient); ok {
		return oc.OAuthProvider()
	}
	return ""
}
