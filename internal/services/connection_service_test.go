package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/oauth"
	"recruitsync_backend/internal/services/dto"
	"recruitsync_backend/pkg/apperrors"
)

type fakeOAuthFlow struct {
	platform string
	tok      *oauth.Token
	err      error
}

func (f *fakeOAuthFlow) HasProvider(provider string) bool { return provider == "linkedin" }

func (f *fakeOAuthFlow) AuthCodeURL(provider, platform string) (string, string, error) {
	return "https://auth.example.com/authorize?provider=" + provider, "state-for-" + platform, nil
}

func (f *fakeOAuthFlow) Exchange(_ context.Context, _, _, _ string) (string, *oauth.Token, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.platform, f.tok, nil
}

type connFixture struct {
	conns *memConnections
	logs  *memSyncLogs
	flow  *fakeOAuthFlow
	svc   *ConnectionService
}

func newConnFixture(conns ...*models.PlatformConnection) *connFixture {
	f := &connFixture{
		conns: newMemConnections(conns...),
		logs:  &memSyncLogs{},
		flow:  &fakeOAuthFlow{},
	}
	registry := fakeRegistry{
		"Indeed": &fakeClient{name: "Indeed", valid: func(s string) bool { return strings.HasPrefix(s, "indeed-") }},
		"LinkedIn Recruiter": fakeOAuthClient{&fakeClient{name: "LinkedIn Recruiter", provider: "linkedin"}},
	}
	f.svc = NewConnectionService(f.conns, f.logs, registry, f.flow)
	return f
}

func TestConnect_CreatesActiveConnection(t *testing.T) {
	f := newConnFixture()

	resp, err := f.svc.Connect(context.Background(), &dto.ConnectRequest{
		Name: "Indeed", Type: "job-board", MonthlyCost: 99, APIKey: "indeed-abc123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ConnectionStatusActive, resp.Status)
	assert.True(t, resp.Connected)
	assert.Equal(t, "api_key", resp.AuthType)
	assert.True(t, resp.SyncSupported)
	assert.NotNil(t, resp.ConnectedAt)

	stored := f.conns.get(resp.ID)
	assert.Equal(t, "indeed-abc123", stored.Credential().AccessToken())
}

func TestConnect_UpdatesExistingConnection(t *testing.T) {
	existing := oauthConnection("Indeed", models.OAuthCredential{
		Token: "old", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour), Provider: "x",
	})
	existing.Status = models.ConnectionStatusDisconnected
	f := newConnFixture(existing)

	resp, err := f.svc.Connect(context.Background(), &dto.ConnectRequest{
		Name: "Indeed", Type: "job-board", APIKey: "indeed-new-key",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)

	stored := f.conns.get(existing.ID)
	assert.Equal(t, models.ConnectionStatusActive, stored.Status)
	assert.IsType(t, models.APIKeyCredential{}, stored.Credential())
	assert.Nil(t, stored.RefreshToken)
	assert.Nil(t, stored.OAuthProvider)
}

func TestConnect_UnknownPlatform(t *testing.T) {
	_, err := newConnFixture().svc.Connect(context.Background(), &dto.ConnectRequest{Name: "Monster", APIKey: "k"})
	assert.ErrorIs(t, err, apperrors.ErrIntegrationUnavailable)
}

func TestConnect_InvalidCredentials(t *testing.T) {
	f := newConnFixture()
	_, err := f.svc.Connect(context.Background(), &dto.ConnectRequest{Name: "Indeed", APIKey: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	list, _ := f.conns.List(context.Background())
	assert.Empty(t, list)
}

func TestOAuth_BeginAndComplete(t *testing.T) {
	f := newConnFixture()
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	f.flow.platform = "LinkedIn Recruiter"
	f.flow.tok = &oauth.Token{AccessToken: "AQ-access-1", RefreshToken: "r1", ExpiresAt: expires, Scopes: []string{"r_liteprofile"}}

	start, err := f.svc.BeginOAuth(context.Background(), "LinkedIn Recruiter")
	require.NoError(t, err)
	assert.Contains(t, start.AuthURL, "provider=linkedin")
	assert.Equal(t, "state-for-LinkedIn Recruiter", start.State)

	resp, err := f.svc.CompleteOAuth(context.Background(), "LinkedIn Recruiter", "code", start.State)
	require.NoError(t, err)
	assert.Equal(t, "oauth", resp.AuthType)
	assert.Equal(t, "linkedin", resp.OAuthProvider)
	assert.Equal(t, models.PlatformTypePremium, resp.Type)

	cred := f.conns.get(resp.ID).Credential().(models.OAuthCredential)
	assert.Equal(t, "AQ-access-1", cred.Token)
	assert.Equal(t, "r1", cred.RefreshToken)
	assert.True(t, cred.ExpiresAt.Equal(expires))
}

func TestOAuth_NotAvailableForAPIKeyPlatform(t *testing.T) {
	_, err := newConnFixture().svc.BeginOAuth(context.Background(), "Indeed")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidOperation))
}

func TestOAuth_StateErrors(t *testing.T) {
	f := newConnFixture()
	f.flow.err = oauth.ErrInvalidState
	_, err := f.svc.CompleteOAuth(context.Background(), "LinkedIn Recruiter", "code", "forged")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOAuthState)

	f.flow.err = nil
	f.flow.platform = "Indeed"
	f.flow.tok = &oauth.Token{AccessToken: "x"}
	_, err = f.svc.CompleteOAuth(context.Background(), "LinkedIn Recruiter", "code", "state-for-Indeed")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOAuthState, "state issued for another platform")

	f.flow.err = errors.New("invalid_grant")
	_, err = f.svc.CompleteOAuth(context.Background(), "LinkedIn Recruiter", "code", "s")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestDisconnect_ClearsSecrets(t *testing.T) {
	conn := oauthConnection("LinkedIn Recruiter", models.OAuthCredential{
		Token: "AQ-access", RefreshToken: "r1", ExpiresAt: time.Now().Add(time.Hour), Provider: "linkedin",
	})
	conn.TotalSynced = 7
	f := newConnFixture(conn)

	resp, err := f.svc.Disconnect(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.False(t, resp.Connected)
	assert.Equal(t, models.ConnectionStatusDisconnected, resp.Status)
	assert.Equal(t, 7, resp.TotalSynced)

	stored := f.conns.get(conn.ID)
	assert.Nil(t, stored.APIKey)
	assert.Nil(t, stored.RefreshToken)
	assert.Nil(t, stored.TokenExpiresAt)
}

func TestPauseResume(t *testing.T) {
	conn := apiKeyConnection("Indeed", "indeed-abc123")
	f := newConnFixture(conn)
	ctx := context.Background()

	_, err := f.svc.Resume(ctx, conn.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidOperation))

	resp, err := f.svc.Pause(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusPaused, resp.Status)

	resp, err = f.svc.Resume(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusActive, resp.Status)
}

func TestRemoveAndMissing(t *testing.T) {
	conn := apiKeyConnection("Indeed", "indeed-abc123")
	f := newConnFixture(conn)

	require.NoError(t, f.svc.Remove(context.Background(), conn.ID))

	_, err := f.svc.Get(context.Background(), conn.ID)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)
	assert.ErrorIs(t, f.svc.Remove(context.Background(), conn.ID), apperrors.ErrConnectionNotFound)
}

func TestSyncLogsAndPlatforms(t *testing.T) {
	conn := apiKeyConnection("Indeed", "indeed-abc123")
	f := newConnFixture(conn)
	require.NoError(t, f.logs.Create(context.Background(), &models.SyncLog{PlatformID: conn.ID, Status: models.SyncStatusSuccess}))

	logs, err := f.svc.SyncLogs(context.Background(), conn.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	infos := f.svc.Platforms()
	require.Len(t, infos, 2)
	assert.Equal(t, "Indeed", infos[0].Name)
	assert.Equal(t, "linkedin", infos[1].OAuthProvider)
}
