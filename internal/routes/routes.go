package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruitsync_backend/internal/handlers"
	"recruitsync_backend/internal/logger"
)

// RegisterRoutes wires the operational endpoints and the /api/v1 handlers.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	db Pinger,
	metrics http.Handler,
) {
	SetupPublicRoutes(ginRouter, db, metrics)

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.ConnectionHandler.RegisterRoutes(api)
		appHandlers.OAuthHandler.RegisterRoutes(api)
		appHandlers.SyncHandler.RegisterRoutes(api)
		appHandlers.CandidateHandler.RegisterRoutes(api)
	}

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
