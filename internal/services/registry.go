package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	ConnectionService *ConnectionService
	CandidateService  *CandidateService
	SyncService       *SyncService
	HireService       *HireService
	TokenService      *TokenService
}
