// Package oauth runs the authorization-code flow and token refresh against
// configured OAuth providers.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"recruitsync_backend/internal/config"
)

var (
	ErrUnknownProvider = errors.New("oauth provider is not configured")
	ErrInvalidState    = errors.New("oauth state is invalid or expired")
)

// Token is what a provider hands back on exchange or refresh. ExpiresAt is zero
// when the provider sent no expires_in.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scopes       []string
}

// Refresher is the part of Manager the token lifecycle depends on.
type Refresher interface {
	RefreshAccessToken(ctx context.Context, provider, refreshToken string) (*Token, error)
}

type Manager struct {
	providers map[string]*oauth2.Config
	states    *stateSigner
}

func NewManager(providers map[string]config.OAuthProvider, stateSecret string) *Manager {
	m := &Manager{
		providers: make(map[string]*oauth2.Config, len(providers)),
		states:    newStateSigner(stateSecret, stateTTL),
	}

	for name, p := range providers {
		m.providers[name] = &oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  p.RedirectURL,
			Scopes:       p.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   p.AuthURL,
				TokenURL:  p.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
	}
	return m
}

func (m *Manager) HasProvider(provider string) bool {
	_, ok := m.providers[provider]
	return ok
}

// AuthCodeURL returns the consent URL and the signed state bound to platform.
func (m *Manager) AuthCodeURL(provider, platform string) (string, string, error) {
	cfg, ok := m.providers[provider]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	state, err := m.states.Sign(provider, platform)
	if err != nil {
		return "", "", fmt.Errorf("sign state: %w", err)
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}

// Exchange verifies state and trades code for a token. It returns the platform
// name the state was issued for.
func (m *Manager) Exchange(ctx context.Context, provider, code, state string) (string, *Token, error) {
	cfg, ok := m.providers[provider]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	claims, err := m.states.Verify(state)
	if err != nil || claims.Provider != provider {
		return "", nil, ErrInvalidState
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}
	return claims.Platform, fromOAuth2(tok, cfg.Scopes), nil
}

// RefreshAccessToken trades refreshToken for a new access token. When the
// provider does not rotate, the returned RefreshToken is the one passed in.
func (m *Manager) RefreshAccessToken(ctx context.Context, provider, refreshToken string) (*Token, error) {
	cfg, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if refreshToken == "" {
		return nil, errors.New("refresh token is empty")
	}

	// An empty access token forces the source to hit the token endpoint.
	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	out := fromOAuth2(tok, nil)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

func fromOAuth2(tok *oauth2.Token, fallbackScopes []string) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		Scopes:       fallbackScopes,
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		out.Scopes = strings.Fields(strings.ReplaceAll(scope, ",", " "))
	}
	return out
}
