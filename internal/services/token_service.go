package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"recruitsync_backend/internal/lock"
	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/metrics"
	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/oauth"
	"recruitsync_backend/internal/repositories"
	"recruitsync_backend/pkg/apperrors"
)

const (
	DefaultTokenRefreshBuffer = 5 * time.Minute

	// DefaultTokenLifetime is assumed when a refresh response omits expires_in.
	DefaultTokenLifetime = time.Hour
)

// TokenService hands out a usable access credential for a connection,
// refreshing OAuth tokens that are expired or about to expire.
type TokenService struct {
	connRepo  repositories.ConnectionRepository
	refresher oauth.Refresher
	locker    lock.Locker
	metrics   *metrics.Metrics
	buffer    time.Duration
	lockTTL   time.Duration
	group     singleflight.Group
	now       func() time.Time
}

func NewTokenService(
	connRepo repositories.ConnectionRepository,
	refresher oauth.Refresher,
	locker lock.Locker,
	m *metrics.Metrics,
	buffer time.Duration,
	lockTTL time.Duration,
) *TokenService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if buffer <= 0 {
		buffer = DefaultTokenRefreshBuffer
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &TokenService{
		connRepo:  connRepo,
		refresher: refresher,
		locker:    locker,
		metrics:   m,
		buffer:    buffer,
		lockTTL:   lockTTL,
		now:       time.Now,
	}
}

// EnsureValidToken returns the access credential to use right now. It must be
// called before every fetch; nothing is cached between calls.
//
// Errors: ErrNotConnected, ErrTokenExpired (no refresh token stored),
// ErrTokenRefreshFailed (provider rejected the refresh).
func (s *TokenService) EnsureValidToken(ctx context.Context, conn *models.PlatformConnection) (string, error) {
	switch cred := conn.Credential().(type) {
	case nil:
		return "", apperrors.ErrNotConnected
	case models.APIKeyCredential:
		return cred.Key, nil
	case models.OAuthCredential:
		if cred.ValidAt(s.now(), s.buffer) {
			return cred.Token, nil
		}
		if !cred.CanRefresh() {
			return "", apperrors.ErrTokenExpired
		}
	}

	// Concurrent callers for one connection share a single refresh, so a
	// rotating refresh token is never replayed.
	v, err, _ := s.group.Do(conn.ID, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lockTTL)
		defer cancel()
		return s.refresh(refreshCtx, conn.ID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenService) refresh(ctx context.Context, connID string) (string, error) {
	release, err := s.locker.Acquire(ctx, "token-refresh:"+connID, s.lockTTL)
	if err != nil {
		return "", fmt.Errorf("acquire refresh lock: %w", err)
	}
	defer release()

	// Another process may have refreshed while we waited for the lock.
	conn, err := s.connRepo.FindByID(ctx, connID)
	if err != nil {
		return "", fmt.Errorf("reload connection: %w", err)
	}

	var cred models.OAuthCredential
	switch c := conn.Credential().(type) {
	case nil:
		return "", apperrors.ErrNotConnected
	case models.APIKeyCredential:
		return c.Key, nil
	case models.OAuthCredential:
		cred = c
	}

	if cred.ValidAt(s.now(), s.buffer) {
		return cred.Token, nil
	}
	if !cred.CanRefresh() {
		return "", apperrors.ErrTokenExpired
	}

	tok, err := s.refresher.RefreshAccessToken(ctx, cred.Provider, cred.RefreshToken)
	if err == nil && tok.AccessToken == "" {
		err = fmt.Errorf("provider returned an empty access token")
	}
	if err != nil {
		s.metrics.RecordTokenRefresh("failure")
		logger.CtxWithError(ctx, "Token refresh failed", err, "platform", conn.Name, "provider", cred.Provider)
		return "", fmt.Errorf("%w: %v", apperrors.ErrTokenRefreshFailed, err)
	}

	next := models.OAuthCredential{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt,
		Provider:     cred.Provider,
		Scopes:       tok.Scopes,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}
	if len(next.Scopes) == 0 {
		next.Scopes = cred.Scopes
	}
	if next.ExpiresAt.IsZero() {
		next.ExpiresAt = s.now().Add(DefaultTokenLifetime)
	}

	if err := s.connRepo.UpdateTokens(ctx, conn.ID, next); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	s.metrics.RecordTokenRefresh("success")
	logger.CtxInfo(ctx, "Access token refreshed", "platform", conn.Name, "provider", cred.Provider)
	return next.Token, nil
}
