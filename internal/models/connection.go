package models

import (
	"time"

	"gorm.io/datatypes"

	"recruitsync_backend/internal/secrets"
)

// PlatformConnection is the persisted state of one external recruiting platform.
// The credential columns are flat at the storage edge; business code reads them
// through Credential.
type PlatformConnection struct {
	BaseModel
	Name           string                      `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Type           PlatformType                `gorm:"type:varchar(20);not null" json:"type"`
	MonthlyCost    float64                     `gorm:"default:0" json:"monthly_cost"`
	Status         ConnectionStatus            `gorm:"type:varchar(20);not null;default:'DISCONNECTED'" json:"status"`
	APIKey         *secrets.Sealed             `json:"-"`
	RefreshToken   *secrets.Sealed             `json:"-"`
	TokenExpiresAt *time.Time                  `json:"token_expires_at,omitempty"`
	OAuthProvider  *string                     `gorm:"type:varchar(50)" json:"oauth_provider,omitempty"`
	TokenScopes    datatypes.JSONSlice[string] `json:"token_scopes,omitempty"`
	ConnectedAt    *time.Time                  `json:"connected_at,omitempty"`
	LastSyncAt     *time.Time                  `json:"last_sync_at,omitempty"`
	TotalSynced    int                         `gorm:"not null;default:0" json:"total_synced"`

	SyncLogs []SyncLog `gorm:"foreignKey:PlatformID;constraint:OnDelete:CASCADE" json:"-"`
}

// Credential is either an APIKeyCredential or an OAuthCredential.
type Credential interface {
	AccessToken() string
}

// APIKeyCredential is a long-lived key that is never refreshed.
type APIKeyCredential struct {
	Key string
}

func (c APIKeyCredential) AccessToken() string { return c.Key }

// OAuthCredential is an access token with a tracked expiry.
type OAuthCredential struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
	Provider     string
	Scopes       []string
}

func (c OAuthCredential) AccessToken() string { return c.Token }

// CanRefresh reports whether a refresh token is stored.
func (c OAuthCredential) CanRefresh() bool { return c.RefreshToken != "" }

// ValidAt reports whether the token is still usable at now with buffer to spare.
func (c OAuthCredential) ValidAt(now time.Time, buffer time.Duration) bool {
	return now.Add(buffer).Before(c.ExpiresAt)
}

// Credential returns nil when nothing is stored. A connection without an OAuth
// provider or without a tracked expiry holds a long-lived API key.
func (c *PlatformConnection) Credential() Credential {
	if c.APIKey == nil || *c.APIKey == "" {
		return nil
	}

	provider := ""
	if c.OAuthProvider != nil {
		provider = *c.OAuthProvider
	}
	if provider == "" || c.TokenExpiresAt == nil {
		return APIKeyCredential{Key: c.APIKey.String()}
	}

	cred := OAuthCredential{
		Token:     c.APIKey.String(),
		ExpiresAt: *c.TokenExpiresAt,
		Provider:  provider,
		Scopes:    c.TokenScopes,
	}
	if c.RefreshToken != nil {
		cred.RefreshToken = c.RefreshToken.String()
	}
	return cred
}

// IsConnected reports whether a credential is stored.
func (c *PlatformConnection) IsConnected() bool {
	return c.Credential() != nil
}

// SetOAuth stores an OAuth-backed credential on the record.
func (c *PlatformConnection) SetOAuth(cred OAuthCredential) {
	access := secrets.Sealed(cred.Token)
	c.APIKey = &access

	c.RefreshToken = nil
	if cred.RefreshToken != "" {
		refresh := secrets.Sealed(cred.RefreshToken)
		c.RefreshToken = &refresh
	}

	c.TokenExpiresAt = nil
	if !cred.ExpiresAt.IsZero() {
		expires := cred.ExpiresAt
		c.TokenExpiresAt = &expires
	}

	provider := cred.Provider
	c.OAuthProvider = &provider
	c.TokenScopes = cred.Scopes
}

// SetAPIKey stores a long-lived key and clears any OAuth state.
func (c *PlatformConnection) SetAPIKey(key string) {
	k := secrets.Sealed(key)
	c.APIKey = &k
	c.RefreshToken = nil
	c.TokenExpiresAt = nil
	c.OAuthProvider = nil
	c.TokenScopes = nil
}
