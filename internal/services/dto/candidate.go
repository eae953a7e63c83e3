package dto

import "recruitsync_backend/internal/models"

// ==============================
// Candidates
// ==============================

type CreateCandidateRequest struct {
	FirstName   string   `json:"first_name" validate:"required,max=100"`
	LastName    string   `json:"last_name" validate:"max=100"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"max=50"`
	Skills      []string `json:"skills" validate:"max=50,dive,max=100"`
	Source      string   `json:"source" validate:"max=100"`
	LinkedinURL string   `json:"linkedin_url" validate:"omitempty,url"`
	Experience  string   `json:"experience"`
	Notes       string   `json:"notes"`
	CostOfHire  float64  `json:"cost_of_hire" validate:"min=0"`
	PositionID  string   `json:"position_id" validate:"omitempty,uuid"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,candidate_status"`
}

type CandidateListQuery struct {
	Status   string `form:"status" validate:"omitempty,candidate_status"`
	Source   string `form:"source"`
	Search   string `form:"q"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type CandidateListResponse struct {
	Candidates []models.Candidate `json:"candidates"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

type HireResponse struct {
	Employee  *models.Employee `json:"employee"`
	TaskCount int              `json:"task_count"`
}

// StatusUpdateResponse carries the hire outcome when the update was a hire.
type StatusUpdateResponse struct {
	Candidate *models.Candidate `json:"candidate"`
	Hire      *HireResponse     `json:"hire,omitempty"`
}
