package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/metrics"
	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/platforms"
	"recruitsync_backend/internal/repositories"
	"recruitsync_backend/pkg/apperrors"
)

const DefaultFetchTimeout = 30 * time.Second

// FailureReason says why a sync run did not complete.
type FailureReason string

const (
	ReasonNotFound           FailureReason = "not_found"
	ReasonNotConnected       FailureReason = "not_connected"
	ReasonUnsupported        FailureReason = "unsupported"
	ReasonReconnectRequired  FailureReason = "reconnect_required"
	ReasonInvalidCredentials FailureReason = "invalid_credentials"
	ReasonFetchFailed        FailureReason = "fetch_failed"
	ReasonStorage            FailureReason = "storage"
	ReasonInternal           FailureReason = "internal"
)

// Retryable reports whether running the sync again without user action can help.
func (r FailureReason) Retryable() bool {
	return r == ReasonFetchFailed || r == ReasonStorage || r == ReasonInternal
}

// SyncResult is the outcome of one sync run. Expected failures are reported
// here, never as an error.
type SyncResult struct {
	PlatformID        string            `json:"platform_id"`
	Platform          string            `json:"platform,omitempty"`
	Success           bool              `json:"success"`
	Status            models.SyncStatus `json:"status,omitempty"`
	CandidatesFound   int               `json:"candidates_found"`
	CandidatesCreated int               `json:"candidates_created"`
	SkippedEmails     []string          `json:"skipped_emails"`
	Error             string            `json:"error,omitempty"`
	Reason            FailureReason     `json:"reason,omitempty"`
}

type ClientRegistry interface {
	Get(name string) (platforms.Client, error)
	HasSyncSupport(name string) bool
	Names() []string
}

type TokenProvider interface {
	EnsureValidToken(ctx context.Context, conn *models.PlatformConnection) (string, error)
}

type ReconnectNotifier interface {
	SendReconnectRequired(platform, reason string) error
}

// SyncService pulls candidates from a platform: token, fetch, dedup by email,
// persist, log, update connection stats.
type SyncService struct {
	connRepo      repositories.ConnectionRepository
	candidateRepo repositories.CandidateRepository
	syncLogRepo   repositories.SyncLogRepository
	registry      ClientRegistry
	tokens        TokenProvider
	notifier      ReconnectNotifier
	metrics       *metrics.Metrics
	fetchTimeout  time.Duration
	now           func() time.Time

	// reconnectAlerts maps connection ID to the expiry already reported.
	reconnectAlerts sync.Map
}

func NewSyncService(
	connRepo repositories.ConnectionRepository,
	candidateRepo repositories.CandidateRepository,
	syncLogRepo repositories.SyncLogRepository,
	registry ClientRegistry,
	tokens TokenProvider,
	notifier ReconnectNotifier,
	m *metrics.Metrics,
	fetchTimeout time.Duration,
) *SyncService {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &SyncService{
		connRepo:      connRepo,
		candidateRepo: candidateRepo,
		syncLogRepo:   syncLogRepo,
		registry:      registry,
		tokens:        tokens,
		notifier:      notifier,
		metrics:       m,
		fetchTimeout:  fetchTimeout,
		now:           time.Now,
	}
}

// SyncPlatform runs one sync pass for the connection with platformID. Every
// attempt on an existing connection leaves a SyncLog row.
func (s *SyncService) SyncPlatform(ctx context.Context, platformID string) *SyncResult {
	start := s.now()
	result := &SyncResult{PlatformID: platformID, SkippedEmails: []string{}}

	conn, err := s.connRepo.FindByID(ctx, platformID)
	if err != nil {
		if errors.Is(err, repositories.ErrConnectionNotFound) {
			return result.fail(ReasonNotFound, apperrors.ErrConnectionNotFound.Message)
		}
		logger.CtxWithError(ctx, "Failed to load connection for sync", err, "platform_id", platformID)
		return result.fail(ReasonStorage, err.Error())
	}
	result.Platform = conn.Name

	if !conn.IsConnected() {
		return s.finishFailed(ctx, conn, result.fail(ReasonNotConnected, apperrors.ErrNotConnected.Message), start)
	}

	client, err := s.registry.Get(conn.Name)
	if err != nil {
		msg := fmt.Sprintf("%s: %s", apperrors.ErrIntegrationUnavailable.Message, conn.Name)
		return s.finishFailed(ctx, conn, result.fail(ReasonUnsupported, msg), start)
	}

	token, err := s.tokens.EnsureValidToken(ctx, conn)
	if err != nil {
		switch {
		case apperrors.HasCode(err, apperrors.CodeReconnectRequired):
			s.alertReconnect(ctx, conn, err)
			result.fail(ReasonReconnectRequired, reasonMessage(err))
		case errors.Is(err, apperrors.ErrNotConnected):
			result.fail(ReasonNotConnected, apperrors.ErrNotConnected.Message)
		default:
			result.fail(ReasonInternal, err.Error())
		}
		return s.finishFailed(ctx, conn, result, start)
	}
	s.reconnectAlerts.Delete(conn.ID)

	batch, err := s.fetch(ctx, client, token)
	if err != nil {
		if errors.Is(err, platforms.ErrUnauthenticated) {
			result.fail(ReasonInvalidCredentials, apperrors.ErrInvalidCredentials.Message+": "+err.Error())
		} else {
			fetchErr := apperrors.ErrFetchFailed(err)
			result.fail(ReasonFetchFailed, fetchErr.Message+": "+err.Error())
		}
		return s.finishFailed(ctx, conn, result, start)
	}
	result.CandidatesFound = len(batch)

	if err := s.ingest(ctx, conn, batch, result); err != nil {
		logger.CtxWithError(ctx, "Sync aborted mid-batch", err, "platform", conn.Name, "created", result.CandidatesCreated)
		result.fail(ReasonStorage, err.Error())
		return s.finishFailed(ctx, conn, result, start)
	}

	result.Success = true
	result.Status = models.SyncStatusSuccess
	if result.CandidatesCreated > 0 && len(result.SkippedEmails) > 0 {
		result.Status = models.SyncStatusPartial
	}

	now := s.now()
	s.writeLog(ctx, conn, result, now)
	if err := s.connRepo.RecordSync(ctx, conn.ID, result.CandidatesCreated, &now); err != nil {
		logger.CtxWithError(ctx, "Failed to update connection sync stats", err, "platform", conn.Name)
	}

	s.report(conn, result, start)
	return result
}

// SyncPlatformByName resolves a connection by its platform name and syncs it.
func (s *SyncService) SyncPlatformByName(ctx context.Context, name string) *SyncResult {
	conn, err := s.connRepo.FindByName(ctx, name)
	if err != nil {
		result := &SyncResult{Platform: name, SkippedEmails: []string{}}
		if errors.Is(err, repositories.ErrConnectionNotFound) {
			return result.fail(ReasonNotFound, apperrors.ErrConnectionNotFound.Message)
		}
		return result.fail(ReasonStorage, err.Error())
	}
	return s.SyncPlatform(ctx, conn.ID)
}

// SyncAll syncs every ACTIVE connection that has a registered client, one
// after another.
func (s *SyncService) SyncAll(ctx context.Context) ([]*SyncResult, error) {
	conns, err := s.connRepo.ListByStatus(ctx, models.ConnectionStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active connections: %w", err)
	}

	results := make([]*SyncResult, 0, len(conns))
	for _, conn := range conns {
		if !s.registry.HasSyncSupport(conn.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.SyncPlatform(ctx, conn.ID))
	}
	return results, nil
}

// fetch bounds the client call with the fetch timeout and turns a panic or a
// timeout into an error. A timed-out fetch is never an empty batch.
func (s *SyncService) fetch(ctx context.Context, client platforms.Client, token string) (batch []platforms.ExternalCandidate, err error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			batch = nil
			err = fmt.Errorf("platform client panicked: %v", r)
		}
	}()

	batch, err = client.FetchCandidates(fetchCtx, token)
	if err == nil && fetchCtx.Err() != nil {
		err = fetchCtx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("fetch timed out after %s: %w", s.fetchTimeout, err)
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// ingest creates one candidate per new email. Creation is atomic per record;
// an error stops the loop but keeps what was created.
func (s *SyncService) ingest(ctx context.Context, conn *models.PlatformConnection, batch []platforms.ExternalCandidate, result *SyncResult) error {
	seen := make(map[string]struct{}, len(batch))

	for _, record := range batch {
		email := record.NormalizedEmail()
		if email == "" {
			logger.CtxWarn(ctx, "Skipping candidate without email", "platform", conn.Name, "name", record.FirstName+" "+record.LastName)
			continue
		}
		if _, dup := seen[email]; dup {
			result.SkippedEmails = append(result.SkippedEmails, email)
			continue
		}
		seen[email] = struct{}{}

		exists, err := s.candidateRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check %s: %w", email, err)
		}
		if exists {
			result.SkippedEmails = append(result.SkippedEmails, email)
			continue
		}

		created, err := s.candidateRepo.CreateIfAbsent(ctx, candidateFromExternal(record, email, conn.Name, s.now()))
		if err != nil {
			return fmt.Errorf("create %s: %w", email, err)
		}
		if !created {
			// Lost a race with a concurrent sync; the unique index kept one row.
			result.SkippedEmails = append(result.SkippedEmails, email)
			continue
		}
		result.CandidatesCreated++
	}
	return nil
}

func (s *SyncService) finishFailed(ctx context.Context, conn *models.PlatformConnection, result *SyncResult, start time.Time) *SyncResult {
	s.writeLog(ctx, conn, result, s.now())

	// Candidates created before a mid-batch failure still count.
	if result.CandidatesCreated > 0 {
		if err := s.connRepo.RecordSync(ctx, conn.ID, result.CandidatesCreated, nil); err != nil {
			logger.CtxWithError(ctx, "Failed to update connection sync stats", err, "platform", conn.Name)
		}
	}

	s.report(conn, result, start)
	return result
}

func (s *SyncService) writeLog(ctx context.Context, conn *models.PlatformConnection, result *SyncResult, at time.Time) {
	entry := &models.SyncLog{
		PlatformID:      conn.ID,
		CandidatesFound: result.CandidatesFound,
		CandidatesNew:   result.CandidatesCreated,
		Status:          result.Status,
		SyncedAt:        at,
	}
	if len(result.SkippedEmails) > 0 {
		entry.SkippedEmails = append([]string(nil), result.SkippedEmails...)
	}
	if result.Error != "" {
		msg := result.Error
		entry.ErrorMessage = &msg
	}

	if err := s.syncLogRepo.Create(ctx, entry); err != nil {
		logger.CtxWithError(ctx, "Failed to write sync log", err, "platform", conn.Name, "status", result.Status)
	}
}

func (s *SyncService) report(conn *models.PlatformConnection, result *SyncResult, start time.Time) {
	duration := s.now().Sub(start)

	var err error
	if result.Error != "" {
		err = errors.New(result.Error)
	}
	logger.SyncLog(conn.Name, string(result.Status), result.CandidatesFound, result.CandidatesCreated, len(result.SkippedEmails), duration, err)
	s.metrics.RecordSync(conn.Name, string(result.Status), result.CandidatesCreated, len(result.SkippedEmails), duration)
}

// alertReconnect notifies the admin once per expired credential. The marker is
// cleared as soon as a token resolves again, so the next expiry alerts anew.
func (s *SyncService) alertReconnect(ctx context.Context, conn *models.PlatformConnection, cause error) {
	if s.notifier == nil {
		return
	}
	marker := ""
	if conn.TokenExpiresAt != nil {
		marker = conn.TokenExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	if prev, loaded := s.reconnectAlerts.Swap(conn.ID, marker); loaded && prev == marker {
		logger.CtxDebug(ctx, "Reconnect alert already sent", "platform", conn.Name)
		return
	}

	platform := conn.Name
	reason := reasonMessage(cause)
	go func() {
		if err := s.notifier.SendReconnectRequired(platform, reason); err != nil {
			logger.CtxWithError(ctx, "Failed to send reconnect alert", err, "platform", platform)
		}
	}()
}

func (r *SyncResult) fail(reason FailureReason, msg string) *SyncResult {
	r.Success = false
	r.Status = models.SyncStatusFailed
	r.Reason = reason
	r.Error = msg
	return r
}

// reasonMessage prefers the client-facing AppError message over the wrapped detail.
func reasonMessage(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		if detail := strings.TrimPrefix(err.Error(), appErr.Error()); detail != err.Error() {
			return appErr.Message + detail
		}
		return appErr.Message
	}
	return err.Error()
}

func candidateFromExternal(record platforms.ExternalCandidate, email, platform string, now time.Time) *models.Candidate {
	source := strings.TrimSpace(record.Source)
	if source == "" {
		source = platform
	}

	return &models.Candidate{
		FirstName:   strings.TrimSpace(record.FirstName),
		LastName:    strings.TrimSpace(record.LastName),
		Email:       email,
		Phone:       optional(record.Phone),
		Skills:      cleanSkills(record.Skills),
		Source:      source,
		LinkedinURL: optional(record.LinkedinURL),
		Experience:  optional(record.Experience),
		Notes:       optional(record.Notes),
		Status:      models.CandidateStatusNew,
		AppliedAt:   now,
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
