package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/metrics"
	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/repositories"
	"recruitsync_backend/pkg/apperrors"
)

type WelcomeNotifier interface {
	SendWelcome(to, firstName, jobTitle string, startDate time.Time, taskCount int) error
}

type HireResult struct {
	Employee  *models.Employee `json:"employee"`
	TaskCount int              `json:"task_count"`
}

// HireService turns a candidate into an employee with an onboarding plan.
type HireService struct {
	hireRepo repositories.HireRepository
	notifier WelcomeNotifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewHireService(hireRepo repositories.HireRepository, notifier WelcomeNotifier, m *metrics.Metrics) *HireService {
	return &HireService{
		hireRepo: hireRepo,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// HireCandidate runs the whole hire in one transaction: employee record,
// onboarding tasks and the HIRED status either all commit or none do.
func (s *HireService) HireCandidate(ctx context.Context, candidateID string) (*HireResult, error) {
	var result *HireResult

	err := s.hireRepo.WithinTransaction(ctx, func(tx repositories.HireTx) error {
		candidate, err := tx.LockCandidate(candidateID)
		if err != nil {
			if errors.Is(err, repositories.ErrCandidateNotFound) {
				return apperrors.ErrCandidateNotFound
			}
			return fmt.Errorf("lock candidate: %w", err)
		}

		switch candidate.Status {
		case models.CandidateStatusHired:
			return apperrors.ErrCandidateAlreadyHired
		case models.CandidateStatusRejected:
			return apperrors.ErrInvalidStatusTransition.WithDetails(map[string]string{
				"from": string(candidate.Status),
				"to":   string(models.CandidateStatusHired),
			})
		}

		now := s.now()
		employee := &models.Employee{
			CandidateID:     &candidate.ID,
			FirstName:       candidate.FirstName,
			LastName:        candidate.LastName,
			Email:           candidate.Email,
			Phone:           candidate.Phone,
			Bio:             ComposeBio(candidate),
			Status:          models.EmployeeStatusOnboarding,
			StartDate:       now,
			AnniversaryDate: now,
		}

		if candidate.PositionID != nil {
			position, err := tx.FindPosition(*candidate.PositionID)
			if err != nil {
				return fmt.Errorf("find position: %w", err)
			}
			if position != nil {
				employee.JobTitle = position.Title
				employee.DepartmentID = position.DepartmentID
			}
		}

		if err := tx.CreateEmployee(employee); err != nil {
			if errors.Is(err, repositories.ErrEmployeeExists) {
				return apperrors.ErrCandidateAlreadyHired
			}
			return fmt.Errorf("create employee: %w", err)
		}

		items, err := tx.OnboardingItems()
		if err != nil {
			return fmt.Errorf("load onboarding checklist: %w", err)
		}

		tasks := make([]models.EmployeeTask, 0, len(items))
		for _, item := range items {
			itemID := item.ID
			tasks = append(tasks, models.EmployeeTask{
				EmployeeID:      employee.ID,
				ChecklistItemID: &itemID,
				Title:           item.Title,
				Description:     item.Description,
				SortOrder:       item.SortOrder,
				Status:          models.TaskStatusPending,
			})
		}
		if err := tx.CreateTasks(tasks); err != nil {
			return fmt.Errorf("create onboarding tasks: %w", err)
		}

		if err := tx.MarkHired(candidate.ID, now); err != nil {
			if errors.Is(err, repositories.ErrAlreadyHired) {
				return apperrors.ErrCandidateAlreadyHired
			}
			return fmt.Errorf("mark candidate hired: %w", err)
		}

		employee.Tasks = tasks
		result = &HireResult{Employee: employee, TaskCount: len(tasks)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordHire()
	logger.CtxInfo(ctx, "Candidate hired",
		"candidate_id", candidateID,
		"employee_id", result.Employee.ID,
		"tasks", result.TaskCount,
	)

	s.sendWelcome(ctx, result)
	return result, nil
}

func (s *HireService) sendWelcome(ctx context.Context, result *HireResult) {
	if s.notifier == nil {
		return
	}
	e := result.Employee
	go func() {
		if err := s.notifier.SendWelcome(e.Email, e.FirstName, e.JobTitle, e.StartDate, result.TaskCount); err != nil {
			logger.CtxWithError(ctx, "Failed to send welcome email", err, "employee_id", e.ID)
		}
	}()
}
