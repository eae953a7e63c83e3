package workers

import (
	"context"
	"time"

	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/repositories"
)

type TokenProvider interface {
	EnsureValidToken(ctx context.Context, conn *models.PlatformConnection) (string, error)
}

// TokenRefreshWorker refreshes OAuth tokens of active connections ahead of
// the next sync so a scheduled pass rarely has to wait on a provider.
type TokenRefreshWorker struct {
	connRepo repositories.ConnectionRepository
	tokens   TokenProvider
	interval time.Duration
}

func NewTokenRefreshWorker(connRepo repositories.ConnectionRepository, tokens TokenProvider, interval time.Duration) *TokenRefreshWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &TokenRefreshWorker{connRepo: connRepo, tokens: tokens, interval: interval}
}

func (w *TokenRefreshWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *TokenRefreshWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token refresh worker stopped")
			return
		case <-ticker.C:
			w.RefreshAll(ctx)
		}
	}
}

// RefreshAll touches every active OAuth connection and returns how many
// failed. EnsureValidToken only calls the provider when a token is close to
// expiry.
func (w *TokenRefreshWorker) RefreshAll(ctx context.Context) int {
	conns, err := w.connRepo.ListByStatus(ctx, models.ConnectionStatusActive)
	if err != nil {
		logger.WorkerLog("token_refresh", "list_connections", err)
		return 0
	}

	failed := 0
	for i := range conns {
		if _, ok := conns[i].Credential().(models.OAuthCredential); !ok {
			continue
		}
		if _, err := w.tokens.EnsureValidToken(ctx, &conns[i]); err != nil {
			failed++
			logger.CtxWarn(ctx, "Background token refresh failed", "platform", conns[i].Name, "error", err.Error())
		}
	}
	return failed
}
