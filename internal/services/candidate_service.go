package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/platforms"
	"recruitsync_backend/internal/repositories"
	"recruitsync_backend/internal/services/dto"
	"recruitsync_backend/pkg/apperrors"
)

const manualSource = "Manual"

type CandidateService struct {
	candidateRepo repositories.CandidateRepository
	hires         *HireService
	now           func() time.Time
}

func NewCandidateService(candidateRepo repositories.CandidateRepository, hires *HireService) *CandidateService {
	return &CandidateService{
		candidateRepo: candidateRepo,
		hires:         hires,
		now:           time.Now,
	}
}

// Create adds a manually entered candidate.
func (s *CandidateService) Create(ctx context.Context, req *dto.CreateCandidateRequest) (*models.Candidate, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = manualSource
	}

	candidate := &models.Candidate{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       platforms.NormalizeEmail(req.Email),
		Phone:       optional(req.Phone),
		Skills:      cleanSkills(req.Skills),
		Source:      source,
		LinkedinURL: optional(req.LinkedinURL),
		Experience:  optional(req.Experience),
		Notes:       optional(req.Notes),
		Status:      models.CandidateStatusNew,
		CostOfHire:  req.CostOfHire,
		PositionID:  optional(req.PositionID),
		AppliedAt:   s.now(),
	}

	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		if errors.Is(err, repositories.ErrCandidateExists) {
			return nil, apperrors.ErrCandidateEmailTaken
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Candidate created", "candidate_id", candidate.ID, "source", candidate.Source)
	return candidate, nil
}

func (s *CandidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return nil, apperrors.ErrCandidateNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return candidate, nil
}

func (s *CandidateService) List(ctx context.Context, query *dto.CandidateListQuery) (*dto.CandidateListResponse, error) {
	filter := repositories.CandidateFilter{
		Status:   models.CandidateStatus(query.Status),
		Source:   query.Source,
		Search:   strings.TrimSpace(query.Search),
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	candidates, total, err := s.candidateRepo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}

	page, pageSize := repositories.NormalizePage(query.Page, query.PageSize)
	return &dto.CandidateListResponse{
		Candidates: candidates,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// UpdateStatus moves a candidate along the pipeline. A move to HIRED runs the
// full hire so the employee and onboarding tasks are always created.
func (s *CandidateService) UpdateStatus(ctx context.Context, id string, status models.CandidateStatus) (*dto.StatusUpdateResponse, error) {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !candidate.Status.CanTransitionTo(status) {
		if status == models.CandidateStatusHired && candidate.Status == models.CandidateStatusHired {
			return nil, apperrors.ErrCandidateAlreadyHired
		}
		return nil, apperrors.ErrInvalidStatusTransition.WithDetails(map[string]string{
			"from": string(candidate.Status),
			"to":   string(status),
		})
	}

	if status == models.CandidateStatusHired {
		hire, err := s.hires.HireCandidate(ctx, id)
		if err != nil {
			return nil, err
		}
		hiredAt := hire.Employee.StartDate
		candidate.Status = models.CandidateStatusHired
		candidate.HiredAt = &hiredAt
		return &dto.StatusUpdateResponse{
			Candidate: candidate,
			Hire:      &dto.HireResponse{Employee: hire.Employee, TaskCount: hire.TaskCount},
		}, nil
	}

	if err := s.candidateRepo.UpdateStatus(ctx, id, candidate.Status, status); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return nil, apperrors.ErrStatusChanged
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Candidate status updated", "candidate_id", id, "from", candidate.Status, "to", status)
	candidate.Status = status
	return &dto.StatusUpdateResponse{Candidate: candidate}, nil
}

// Hire is the explicit hire action.
func (s *CandidateService) Hire(ctx context.Context, id string) (*dto.HireResponse, error) {
	hire, err := s.hires.HireCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.HireResponse{Employee: hire.Employee, TaskCount: hire.TaskCount}, nil
}
