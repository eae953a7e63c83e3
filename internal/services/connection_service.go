package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/oauth"
	"recruitsync_backend/internal/platforms"
	"recruitsync_backend/internal/repositories"
	"recruitsync_backend/internal/services/dto"
	"recruitsync_backend/pkg/apperrors"
)

// OAuthFlow is the authorization-code side of the OAuth manager.
type OAuthFlow interface {
	HasProvider(provider string) bool
	AuthCodeURL(provider, platform string) (authURL, state string, err error)
	Exchange(ctx context.Context, provider, code, state string) (platform string, tok *oauth.Token, err error)
}

// ConnectionService manages the stored connection of each external platform.
type ConnectionService struct {
	connRepo    repositories.ConnectionRepository
	syncLogRepo repositories.SyncLogRepository
	registry    ClientRegistry
	oauth       OAuthFlow
	now         func() time.Time
}

func NewConnectionService(
	connRepo repositories.ConnectionRepository,
	syncLogRepo repositories.SyncLogRepository,
	registry ClientRegistry,
	flow OAuthFlow,
) *ConnectionService {
	return &ConnectionService{
		connRepo:    connRepo,
		syncLogRepo: syncLogRepo,
		registry:    registry,
		oauth:       flow,
		now:         time.Now,
	}
}

// Platforms lists every platform with a registered client.
func (s *ConnectionService) Platforms() []dto.PlatformInfo {
	names := s.registry.Names()
	out := make([]dto.PlatformInfo, 0, len(names))
	for _, name := range names {
		info := dto.PlatformInfo{Name: name, SyncSupported: s.registry.HasSyncSupport(name)}
		if client, err := s.registry.Get(name); err == nil {
			info.OAuthProvider = platforms.OAuthProviderOf(client)
		}
		out = append(out, info)
	}
	return out
}

// Connect validates an API key with the platform and stores it, creating the
// connection on first use.
func (s *ConnectionService) Connect(ctx context.Context, req *dto.ConnectRequest) (*dto.ConnectionResponse, error) {
	name := strings.TrimSpace(req.Name)

	client, err := s.registry.Get(name)
	if err != nil {
		return nil, apperrors.ErrIntegrationUnavailable.WithDetails(map[string]string{"platform": name})
	}

	apiKey := strings.TrimSpace(req.APIKey)
	if !client.ValidateCredentials(ctx, apiKey) {
		logger.CtxWarn(ctx, "Rejected platform credential", "platform", name)
		return nil, apperrors.ErrInvalidCredentials
	}

	conn, err := s.upsert(ctx, name, models.PlatformType(req.Type), func(c *models.PlatformConnection) {
		c.Type = models.PlatformType(req.Type)
		c.MonthlyCost = req.MonthlyCost
		c.SetAPIKey(apiKey)
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Platform connected", "platform", name, "auth", "api_key")
	resp := dto.NewConnectionResponse(conn, s.registry.HasSyncSupport(name))
	return &resp, nil
}

// BeginOAuth returns the consent URL for a platform that authenticates with OAuth.
func (s *ConnectionService) BeginOAuth(ctx context.Context, name string) (*dto.OAuthStartResponse, error) {
	provider, err := s.oauthProvider(name)
	if err != nil {
		return nil, err
	}

	authURL, state, err := s.oauth.AuthCodeURL(provider, name)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "OAuth flow started", "platform", name, "provider", provider)
	return &dto.OAuthStartResponse{AuthURL: authURL, State: state}, nil
}

// CompleteOAuth handles the provider callback and stores the issued tokens.
func (s *ConnectionService) CompleteOAuth(ctx context.Context, name, code, state string) (*dto.ConnectionResponse, error) {
	provider, err := s.oauthProvider(name)
	if err != nil {
		return nil, err
	}

	platform, tok, err := s.oauth.Exchange(ctx, provider, code, state)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			return nil, apperrors.ErrInvalidOAuthState
		}
		logger.CtxWithError(ctx, "OAuth code exchange failed", err, "platform", name)
		return nil, apperrors.ErrInvalidCredentials.WithError(err)
	}
	if platform != name {
		return nil, apperrors.ErrInvalidOAuthState
	}

	cred := models.OAuthCredential{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt,
		Provider:     provider,
		Scopes:       tok.Scopes,
	}
	conn, err := s.upsert(ctx, name, models.PlatformTypePremium, func(c *models.PlatformConnection) {
		c.SetOAuth(cred)
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Platform connected", "platform", name, "auth", "oauth", "provider", provider)
	resp := dto.NewConnectionResponse(conn, s.registry.HasSyncSupport(name))
	return &resp, nil
}

// Disconnect drops every stored secret. History and counters are kept.
func (s *ConnectionService) Disconnect(ctx context.Context, id string) (*dto.ConnectionResponse, error) {
	if err := s.connRepo.ClearCredentials(ctx, id); err != nil {
		return nil, s.mapErr(err)
	}
	logger.CtxInfo(ctx, "Platform disconnected", "platform_id", id)
	return s.Get(ctx, id)
}

// Pause excludes an ACTIVE connection from scheduled syncs.
func (s *ConnectionService) Pause(ctx context.Context, id string) (*dto.ConnectionResponse, error) {
	conn, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn.Status != models.ConnectionStatusActive {
		return nil, apperrors.ErrInvalidOperation("integration", "Only active connections can be paused")
	}
	return s.setStatus(ctx, conn, models.ConnectionStatusPaused)
}

func (s *ConnectionService) Resume(ctx context.Context, id string) (*dto.ConnectionResponse, error) {
	conn, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn.Status != models.ConnectionStatusPaused {
		return nil, apperrors.ErrInvalidOperation("integration", "Only paused connections can be resumed")
	}
	if !conn.IsConnected() {
		return nil, apperrors.ErrNotConnected
	}
	return s.setStatus(ctx, conn, models.ConnectionStatusActive)
}

func (s *ConnectionService) List(ctx context.Context) ([]dto.ConnectionResponse, error) {
	conns, err := s.connRepo.List(ctx)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ConnectionResponse, 0, len(conns))
	for i := range conns {
		out = append(out, dto.NewConnectionResponse(&conns[i], s.registry.HasSyncSupport(conns[i].Name)))
	}
	return out, nil
}

func (s *ConnectionService) Get(ctx context.Context, id string) (*dto.ConnectionResponse, error) {
	conn, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewConnectionResponse(conn, s.registry.HasSyncSupport(conn.Name))
	return &resp, nil
}

// Remove deletes the connection together with its sync history.
func (s *ConnectionService) Remove(ctx context.Context, id string) error {
	if err := s.connRepo.Delete(ctx, id); err != nil {
		return s.mapErr(err)
	}
	logger.CtxInfo(ctx, "Platform connection removed", "platform_id", id)
	return nil
}

func (s *ConnectionService) SyncLogs(ctx context.Context, id string, limit int) ([]models.SyncLog, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	logs, err := s.syncLogRepo.ListByPlatform(ctx, id, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if logs == nil {
		logs = []models.SyncLog{}
	}
	return logs, nil
}

// upsert applies mutate to the connection named name, creating it when it
// does not exist yet, and marks it ACTIVE.
func (s *ConnectionService) upsert(ctx context.Context, name string, defaultType models.PlatformType, mutate func(*models.PlatformConnection)) (*models.PlatformConnection, error) {
	now := s.now()

	conn, err := s.connRepo.FindByName(ctx, name)
	switch {
	case errors.Is(err, repositories.ErrConnectionNotFound):
		conn = &models.PlatformConnection{Name: name, Type: defaultType}
		mutate(conn)
		conn.Status = models.ConnectionStatusActive
		conn.ConnectedAt = &now

		err = s.connRepo.Create(ctx, conn)
		if err == nil {
			return conn, nil
		}
		if !errors.Is(err, repositories.ErrConnectionExists) {
			return nil, apperrors.InternalError(err)
		}
		// Created concurrently; fall through to update the winner's row.
		if conn, err = s.connRepo.FindByName(ctx, name); err != nil {
			return nil, apperrors.InternalError(err)
		}
	case err != nil:
		return nil, apperrors.InternalError(err)
	}

	mutate(conn)
	conn.Status = models.ConnectionStatusActive
	conn.ConnectedAt = &now
	if err := s.connRepo.Update(ctx, conn); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return conn, nil
}

func (s *ConnectionService) oauthProvider(name string) (string, error) {
	client, err := s.registry.Get(name)
	if err != nil {
		return "", apperrors.ErrIntegrationUnavailable.WithDetails(map[string]string{"platform": name})
	}
	provider := platforms.OAuthProviderOf(client)
	if provider == "" || s.oauth == nil || !s.oauth.HasProvider(provider) {
		return "", apperrors.ErrInvalidOperation("oauth", "OAuth is not configured for "+name)
	}
	return provider, nil
}

func (s *ConnectionService) setStatus(ctx context.Context, conn *models.PlatformConnection, status models.ConnectionStatus) (*dto.ConnectionResponse, error) {
	if err := s.connRepo.UpdateStatus(ctx, conn.ID, status); err != nil {
		return nil, s.mapErr(err)
	}
	logger.CtxInfo(ctx, "Connection status changed", "platform", conn.Name, "from", conn.Status, "to", status)
	conn.Status = status
	resp := dto.NewConnectionResponse(conn, s.registry.HasSyncSupport(conn.Name))
	return &resp, nil
}

func (s *ConnectionService) find(ctx context.Context, id string) (*models.PlatformConnection, error) {
	conn, err := s.connRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return conn, nil
}

func (s *ConnectionService) mapErr(err error) error {
	if errors.Is(err, repositories.ErrConnectionNotFound) {
		return apperrors.ErrConnectionNotFound
	}
	return apperrors.InternalError(err)
}
