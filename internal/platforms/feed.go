package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"recruitsync_backend/internal/logger"
)

const maxFeedBody = 10 << 20

// FeedClient reads candidates from a job board exposing
// GET {baseURL}/candidates with a Bearer token.
type FeedClient struct {
	name        string
	baseURL     string
	tokenPrefix string
	httpClient  *http.Client
}

type feedResponse struct {
	Candidates []ExternalCandidate `json:"candidates"`
}

func NewFeedClient(name, baseURL, tokenPrefix string, timeout time.Duration) *FeedClient {
	return &FeedClient{
		name:        name,
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokenPrefix: tokenPrefix,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *FeedClient) Name() string { return c.name }

// ValidateCredentials only checks the format; liveness is proven by the first fetch.
func (c *FeedClient) ValidateCredentials(ctx context.Context, credential string) bool {
	credential = strings.TrimSpace(credential)
	if credential == "" || ctx.Err() != nil {
		return false
	}
	return strings.HasPrefix(credential, c.tokenPrefix)
}

func (c *FeedClient) FetchCandidates(ctx context.Context, accessToken string) ([]ExternalCandidate, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrUnauthenticated
	}

	url := c.baseURL + "/candidates"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s candidates: %w", c.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s feed returned status %d", c.name, resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBody)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", c.name, err)
	}

	for i := range body.Candidates {
		if body.Candidates[i].Source == "" {
			body.Candidates[i].Source = c.name
		}
	}

	logger.Debug("Fetched candidate feed",
		"platform", c.name,
		"count", len(body.Candidates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return body.Candidates, nil
}
