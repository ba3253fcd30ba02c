package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/highcommand/highcommand/internal/dto"
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/middleware"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/services"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a new project owned by the current user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns all projects, optionally filtered by a name search
// term. Browsing the catalog does not require membership.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Query("search"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
	})
}

// ListMyProjects returns projects owned by the current user.
func (h *ProjectHandler) ListMyProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.ListOwnedProjects(userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
	})
}

// ListAccessibleProjects returns projects the current user owns or belongs to.
func (h *ProjectHandler) ListAccessibleProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.ListAccessibleProjects(userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
	})
}

// GetProject returns project details. Members only.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(projectID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject updates a project's name and/or description. Owner only.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(projectID, userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProjectStatus flips a project between in-progress and completed.
// Owner only.
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProjectStatus(projectID, userID, models.ProjectStatus(req.Status))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and all of its data. Owner only.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(projectID, userID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}
