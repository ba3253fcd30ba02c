package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/highcommand/highcommand/internal/dto"
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/middleware"
	"github.com/highcommand/highcommand/internal/services"
)

// MembershipHandler coordinates membership and join request HTTP handlers.
type MembershipHandler struct {
	membershipService *services.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// RequestToJoin files a join request for the current user.
func (h *MembershipHandler) RequestToJoin(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	request, err := h.membershipService.RequestToJoin(projectID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToJoinRequestDTO(*request))
}

// ListMembers returns the project's member list, owner first. Members only.
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	project, members, err := h.membershipService.ListMembers(projectID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToMemberDTOs(*project, members),
	})
}

// AddMember adds a user to the project directly. Owner only.
func (h *MembershipHandler) AddMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.membershipService.AddMember(projectID, req.UserID, userID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Member added successfully",
	})
}

// RemoveMember removes a membership. Permitted for the owner or for the
// member removing themselves.
func (h *MembershipHandler) RemoveMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	targetUserID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.membershipService.RemoveMember(projectID, targetUserID, userID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// ListPendingRequests returns the project's pending join requests. Owner only.
func (h *MembershipHandler) ListPendingRequests(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	requests, err := h.membershipService.ListPendingRequests(projectID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": dto.ToJoinRequestDTOs(requests),
	})
}

// ApproveRequest approves a pending join request. Owner only.
func (h *MembershipHandler) ApproveRequest(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	requestID, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	request, err := h.membershipService.ApproveRequest(requestID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJoinRequestDTO(*request))
}

// RejectRequest rejects a pending join request. Owner only.
func (h *MembershipHandler) RejectRequest(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	requestID, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	request, err := h.membershipService.RejectRequest(requestID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJoinRequestDTO(*request))
}
