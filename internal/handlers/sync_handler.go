package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruitsync_backend/internal/auth"
	"recruitsync_backend/internal/middleware"
	"recruitsync_backend/internal/services"
	"recruitsync_backend/pkg/apperrors"
)

type SyncHandler struct {
	*BaseHandler
	syncService SyncService
}

func NewSyncHandler(base *BaseHandler, syncService SyncService) *SyncHandler {
	return &SyncHandler{
		BaseHandler: base,
		syncService: syncService,
	}
}

func (h *SyncHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("")
	group.Use(h.auth, middleware.RequirePermission(auth.PermConnectionsWrite))
	{
		group.POST("/connections/:id/sync", h.SyncPlatform)
		group.POST("/sync", h.SyncAll)
	}
}

// SyncPlatform answers 200 with the outcome whenever the connection exists;
// a failed run is reported in the body, not as an HTTP error.
func (h *SyncHandler) SyncPlatform(c *gin.Context) {
	result := h.syncService.SyncPlatform(c.Request.Context(), c.Param("id"))
	if result.Reason == services.ReasonNotFound {
		h.HandleServiceError(c, apperrors.ErrConnectionNotFound)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) SyncAll(c *gin.Context) {
	results, err := h.syncService.SyncAll(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"total":     len(results),
		"succeeded": succeeded,
	})
}
