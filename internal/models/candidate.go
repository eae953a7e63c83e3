package models

import (
	"time"

	"gorm.io/datatypes"
)

type Candidate struct {
	BaseModel
	FirstName   string                      `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string                      `gorm:"type:varchar(100)" json:"last_name"`
	Email       string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone       *string                     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`
	Source      string                      `gorm:"type:varchar(100);index" json:"source"`
	LinkedinURL *string                     `gorm:"type:varchar(500)" json:"linkedin_url,omitempty"`
	Experience  *string                     `gorm:"type:text" json:"experience,omitempty"`
	Notes       *string                     `gorm:"type:text" json:"notes,omitempty"`
	Status      CandidateStatus             `gorm:"type:varchar(20);not null;default:'NEW';index" json:"status"`
	CostOfHire  float64                     `gorm:"default:0" json:"cost_of_hire"`
	PositionID  *string                     `gorm:"type:varchar(36)" json:"position_id,omitempty"`
	AppliedAt   time.Time                   `gorm:"not null" json:"applied_at"`
	HiredAt     *time.Time                  `json:"hired_at,omitempty"`
}

func (c *Candidate) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// pipelineOrder is the forward order of the candidate lifecycle. REJECTED sits
// outside it.
var pipelineOrder = map[CandidateStatus]int{
	CandidateStatusNew:       0,
	CandidateStatusScreening: 1,
	CandidateStatusInterview: 2,
	CandidateStatusOffer:     3,
	CandidateStatusHired:     4,
}

func (s CandidateStatus) IsValid() bool {
	_, ok := pipelineOrder[s]
	return ok || s == CandidateStatusRejected
}

// IsTerminal reports whether no further transition is possible.
func (s CandidateStatus) IsTerminal() bool {
	return s == CandidateStatusHired || s == CandidateStatusRejected
}

// CanTransitionTo allows forward moves along the pipeline (stages may be
// skipped) and REJECTED from any non-terminal status.
func (s CandidateStatus) CanTransitionTo(next CandidateStatus) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == CandidateStatusRejected {
		return true
	}
	return pipelineOrder[next] > pipelineOrder[s]
}
