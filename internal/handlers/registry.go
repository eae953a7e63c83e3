package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	ConnectionHandler *ConnectionHandler
	OAuthHandler      *OAuthHandler
	SyncHandler       *SyncHandler
	CandidateHandler  *CandidateHandler
}
