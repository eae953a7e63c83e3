package dto

import (
	"time"

	"recruitsync_backend/internal/models"
)

// ==============================
// Connections
// ==============================

type ConnectRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Type        string  `json:"type" validate:"required,platform_type"`
	MonthlyCost float64 `json:"monthly_cost" validate:"min=0"`
	APIKey      string  `json:"api_key" validate:"required,min=4"`
}

// ConnectionResponse is a connection without its secrets.
type ConnectionResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Type           models.PlatformType     `json:"type"`
	MonthlyCost    float64                 `json:"monthly_cost"`
	Status         models.ConnectionStatus `json:"status"`
	Connected      bool                    `json:"connected"`
	AuthType       string                  `json:"auth_type,omitempty"` // api_key | oauth
	OAuthProvider  string                  `json:"oauth_provider,omitempty"`
	TokenScopes    []string                `json:"token_scopes,omitempty"`
	TokenExpiresAt *time.Time              `json:"token_expires_at,omitempty"`
	ConnectedAt    *time.Time              `json:"connected_at,omitempty"`
	LastSyncAt     *time.Time              `json:"last_sync_at,omitempty"`
	TotalSynced    int                     `json:"total_synced"`
	SyncSupported  bool                    `json:"sync_supported"`
}

func NewConnectionResponse(conn *models.PlatformConnection, syncSupported bool) ConnectionResponse {
	resp := ConnectionResponse{
		ID:            conn.ID,
		Name:          conn.Name,
		Type:          conn.Type,
		MonthlyCost:   conn.MonthlyCost,
		Status:        conn.Status,
		ConnectedAt:   conn.ConnectedAt,
		LastSyncAt:    conn.LastSyncAt,
		TotalSynced:   conn.TotalSynced,
		SyncSupported: syncSupported,
	}

	switch cred := conn.Credential().(type) {
	case models.APIKeyCredential:
		resp.Connected = true
		resp.AuthType = "api_key"
	case models.OAuthCredential:
		resp.Connected = true
		resp.AuthType = "oauth"
		resp.OAuthProvider = cred.Provider
		resp.TokenScopes = cred.Scopes
		resp.TokenExpiresAt = conn.TokenExpiresAt
	}
	return resp
}

type PlatformInfo struct {
	Name          string `json:"name"`
	SyncSupported bool   `json:"sync_supported"`
	OAuthProvider string `json:"oauth_provider,omitempty"`
}

type OAuthStartResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

type OAuthCallbackRequest struct {
	Code  string `form:"code" validate:"required"`
	State string `form:"state" validate:"required"`
}

type SyncLogQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
}
