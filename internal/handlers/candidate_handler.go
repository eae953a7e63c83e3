package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruitsync_backend/internal/auth"
	"recruitsync_backend/internal/middleware"
	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/services/dto"
)

type CandidateHandler struct {
	*BaseHandler
	candidateService CandidateService
}

func NewCandidateHandler(base *BaseHandler, candidateService CandidateService) *CandidateHandler {
	return &CandidateHandler{
		BaseHandler:      base,
		candidateService: candidateService,
	}
}

func (h *CandidateHandler) RegisterRoutes(r *gin.RouterGroup) {
	candidates := r.Group("/candidates")
	candidates.Use(h.auth)
	{
		candidates.GET("", middleware.RequirePermission(auth.PermCandidatesRead), h.ListCandidates)
		candidates.GET("/:id", middleware.RequirePermission(auth.PermCandidatesRead), h.GetCandidate)
		candidates.POST("", middleware.RequirePermission(auth.PermCandidatesWrite), h.CreateCandidate)
		candidates.PATCH("/:id/status", middleware.RequirePermission(auth.PermCandidatesWrite), h.UpdateStatus)
		candidates.POST("/:id/hire", middleware.RequirePermission(auth.PermCandidatesHire), h.HireCandidate)
	}
}

func (h *CandidateHandler) ListCandidates(c *gin.Context) {
	var query dto.CandidateListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	resp, err := h.candidateService.List(c.Request.Context(), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	candidate, err := h.candidateService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) CreateCandidate(c *gin.Context) {
	var req dto.CreateCandidateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	candidate, err := h.candidateService.Create(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}

func (h *CandidateHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.candidateService.UpdateStatus(c.Request.Context(), c.Param("id"), models.CandidateStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CandidateHandler) HireCandidate(c *gin.Context) {
	resp, err := h.candidateService.Hire(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
