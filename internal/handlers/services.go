package handlers

import (
	"context"

	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/services"
	"recruitsync_backend/internal/services/dto"
)

// ConnectionService is what the connection and OAuth handlers need from
// services.ConnectionService.
type ConnectionService interface {
	Platforms() []dto.PlatformInfo
	Connect(ctx context.Context, req *dto.ConnectRequest) (*dto.ConnectionResponse, error)
	BeginOAuth(ctx context.Context, name string) (*dto.OAuthStartResponse, error)
	CompleteOAuth(ctx context.Context, name, code, state string) (*dto.ConnectionResponse, error)
	Disconnect(ctx context.Context, id string) (*dto.ConnectionResponse, error)
	Pause(ctx context.Context, id string) (*dto.ConnectionResponse, error)
	Resume(ctx context.Context, id string) (*dto.ConnectionResponse, error)
	List(ctx context.Context) ([]dto.ConnectionResponse, error)
	Get(ctx context.Context, id string) (*dto.ConnectionResponse, error)
	Remove(ctx context.Context, id string) error
	SyncLogs(ctx context.Context, id string, limit int) ([]models.SyncLog, error)
}

type SyncService interface {
	SyncPlatform(ctx context.Context, platformID string) *services.SyncResult
	SyncAll(ctx context.Context) ([]*services.SyncResult, error)
}

type CandidateService interface {
	Create(ctx context.Context, req *dto.CreateCandidateRequest) (*models.Candidate, error)
	Get(ctx context.Context, id string) (*models.Candidate, error)
	List(ctx context.Context, query *dto.CandidateListQuery) (*dto.CandidateListResponse, error)
	UpdateStatus(ctx context.Context, id string, status models.CandidateStatus) (*dto.StatusUpdateResponse, error)
	Hire(ctx context.Context, id string) (*dto.HireResponse, error)
}

var (
	_ ConnectionService = (*services.ConnectionService)(nil)
	_ SyncService       = (*services.SyncService)(nil)
	_ CandidateService  = (*services.CandidateService)(nil)
)
