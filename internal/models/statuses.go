package models

type ConnectionStatus string
type PlatformType string
type CandidateStatus string
type SyncStatus string
type EmployeeStatus string
type TaskStatus string
type ChecklistType string

const (
	ConnectionStatusActive       ConnectionStatus = "ACTIVE"
	ConnectionStatusPaused       ConnectionStatus = "PAUSED"
	ConnectionStatusDisconnected ConnectionStatus = "DISCONNECTED"

	PlatformTypePremium  PlatformType = "premium"
	PlatformTypeNiche    PlatformType = "niche"
	PlatformTypeSocial   PlatformType = "social"
	PlatformTypeJobBoard PlatformType = "job-board"

	CandidateStatusNew       CandidateStatus = "NEW"
	CandidateStatusScreening CandidateStatus = "SCREENING"
	CandidateStatusInterview CandidateStatus = "INTERVIEW"
	CandidateStatusOffer     CandidateStatus = "OFFER"
	CandidateStatusHired     CandidateStatus = "HIRED"
	CandidateStatusRejected  CandidateStatus = "REJECTED"

	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusPartial SyncStatus = "PARTIAL"
	SyncStatusFailed  SyncStatus = "FAILED"

	EmployeeStatusOnboarding EmployeeStatus = "ONBOARDING"
	EmployeeStatusActive     EmployeeStatus = "ACTIVE"

	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"

	ChecklistTypeOnboarding  ChecklistType = "ONBOARDING"
	ChecklistTypeOffboarding ChecklistType = "OFFBOARDING"
)

var PlatformTypes = []PlatformType{
	PlatformTypePremium, PlatformTypeNiche, PlatformTypeSocial, PlatformTypeJobBoard,
}

func (t PlatformType) IsValid() bool {
	for _, v := range PlatformTypes {
		if t == v {
			return true
		}
	}
	return false
}
