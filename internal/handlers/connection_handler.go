package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruitsync_backend/internal/auth"
	"recruitsync_backend/internal/middleware"
	"recruitsync_backend/internal/services/dto"
)

type ConnectionHandler struct {
	*BaseHandler
	connectionService ConnectionService
}

func NewConnectionHandler(base *BaseHandler, connectionService ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		BaseHandler:       base,
		connectionService: connectionService,
	}
}

func (h *ConnectionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/platforms", h.auth, middleware.RequirePermission(auth.PermConnectionsRead), h.ListPlatforms)

	read := r.Group("/connections")
	read.Use(h.auth, middleware.RequirePermission(auth.PermConnectionsRead))
	{
		read.GET("", h.ListConnections)
		read.GET("/:id", h.GetConnection)
		read.GET("/:id/logs", h.GetSyncLogs)
	}

	write := r.Group("/connections")
	write.Use(h.auth, middleware.RequirePermission(auth.PermConnectionsWrite))
	{
		write.POST("", h.Connect)
		write.POST("/:id/disconnect", h.Disconnect)
		write.POST("/:id/pause", h.Pause)
		write.POST("/:id/resume", h.Resume)
	}

	admin := r.Group("/connections")
	admin.Use(h.auth, middleware.RequirePermission(auth.PermConnectionsDelete))
	{
		admin.DELETE("/:id", h.RemoveConnection)
	}
}

func (h *ConnectionHandler) ListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": h.connectionService.Platforms()})
}

func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	conns, err := h.connectionService.List(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h *ConnectionHandler) GetConnection(c *gin.Context) {
	conn, err := h.connectionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) GetSyncLogs(c *gin.Context) {
	var query dto.SyncLogQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	logs, err := h.connectionService.SyncLogs(c.Request.Context(), c.Param("id"), query.Limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *ConnectionHandler) Connect(c *gin.Context) {
	var req dto.ConnectRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	conn, err := h.connectionService.Connect(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	conn, err := h.connectionService.Disconnect(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) Pause(c *gin.Context) {
	conn, err := h.connectionService.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) Resume(c *gin.Context) {
	conn, err := h.connectionService.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) RemoveConnection(c *gin.Context) {
	if err := h.connectionService.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
