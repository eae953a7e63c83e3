package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruitsync_backend/internal/auth"
	"recruitsync_backend/internal/middleware"
	"recruitsync_backend/internal/services/dto"
)

type OAuthHandler struct {
	*BaseHandler
	connectionService ConnectionService
}

func NewOAuthHandler(base *BaseHandler, connectionService ConnectionService) *OAuthHandler {
	return &OAuthHandler{
		BaseHandler:       base,
		connectionService: connectionService,
	}
}

func (h *OAuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/oauth/:platform")
	{
		group.GET("/authorize", h.auth, middleware.RequirePermission(auth.PermConnectionsWrite), h.Authorize)
		// The provider redirects the browser here without a bearer token; the
		// signed state is the proof of origin.
		group.GET("/callback", h.Callback)
	}
}

// Authorize returns the provider consent URL. With ?redirect=true the caller
// is sent there directly.
func (h *OAuthHandler) Authorize(c *gin.Context) {
	start, err := h.connectionService.BeginOAuth(c.Request.Context(), c.Param("platform"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, start.AuthURL)
		return
	}
	c.JSON(http.StatusOK, start)
}

func (h *OAuthHandler) Callback(c *gin.Context) {
	var req dto.OAuthCallbackRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	conn, err := h.connectionService.CompleteOAuth(c.Request.Context(), c.Param("platform"), req.Code, req.State)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}
