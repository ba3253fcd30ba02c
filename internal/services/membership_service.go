package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
)

// MembershipService drives the membership and join request state machine.
// Per (project, user) the states NonMember, Pending, Member and Rejected
// are mutually exclusive; every transition below preserves that.
type MembershipService struct {
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	policy         *PolicyService
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	policy *PolicyService,
) *MembershipService {
	return &MembershipService{
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		policy:         policy,
	}
}

// RequestToJoin files a pending join request for the user. Owners and
// existing members get a conflict, as does a user with a request already
// pending. A rejected user may re-request immediately.
func (s *MembershipService) RequestToJoin(projectID, requesterID uint64) (*models.JoinRequest, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	// The owner never holds a membership row, so the repository guard
	// below would not catch this case.
	if project.OwnerID == requesterID {
		return nil, apperrors.Conflict("user is already a member of this project")
	}

	request, err := s.membershipRepo.CreateJoinRequest(projectID, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyMember):
			return nil, apperrors.Conflict("user is already a member of this project")
		case errors.Is(err, repository.ErrRequestPending):
			return nil, apperrors.Conflict("a join request is already pending")
		default:
			return nil, apperrors.Storage("create join request", err)
		}
	}

	// Re-read with the requesting user attached.
	request, err = s.membershipRepo.FindJoinRequest(request.ID)
	if err != nil {
		return nil, apperrors.Storage("find join request", err)
	}

	return request, nil
}

// ApproveRequest turns a pending request into a membership. Owner only.
// The membership insert and the status flip commit together or not at all.
func (s *MembershipService) ApproveRequest(requestID, approverID uint64) (*models.JoinRequest, error) {
	request, project, err := s.findRequestWithProject(requestID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireOwner(project, approverID); err != nil {
		return nil, err
	}

	if err := s.membershipRepo.ApproveJoinRequest(request); err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestResolved):
			return nil, apperrors.Conflict("join request has already been resolved")
		case errors.Is(err, repository.ErrAlreadyMember):
			return nil, apperrors.Conflict("user is already a member of this project")
		default:
			return nil, apperrors.Storage("approve join request", err)
		}
	}

	return request, nil
}

// RejectRequest flips a pending request to rejected. Owner only. No
// membership side effect; the row is kept as history.
func (s *MembershipService) RejectRequest(requestID, approverID uint64) (*models.JoinRequest, error) {
	request, project, err := s.findRequestWithProject(requestID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireOwner(project, approverID); err != nil {
		return nil, err
	}

	if err := s.membershipRepo.RejectJoinRequest(request); err != nil {
		if errors.Is(err, repository.ErrRequestResolved) {
			return nil, apperrors.Conflict("join request has already been resolved")
		}
		return nil, apperrors.Storage("reject join request", err)
	}

	return request, nil
}

// AddMember adds a user to a project directly, bypassing the request flow.
// Owner only. Any pending request for the pair is resolved to approved in
// the same transaction.
func (s *MembershipService) AddMember(projectID, targetUserID, requesterID uint64) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}

	if err := s.policy.RequireOwner(project, requesterID); err != nil {
		return err
	}

	if _, err := s.userRepo.FindByID(targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.Storage("find user", err)
	}

	if project.OwnerID == targetUserID {
		return apperrors.Conflict("user is already a member of this project")
	}

	if err := s.membershipRepo.AddMember(projectID, targetUserID); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return apperrors.Conflict("user is already a member of this project")
		}
		return apperrors.Storage("add member", err)
	}

	return nil
}

// RemoveMember deletes a membership. Permitted for the owner, or for the
// target removing themselves. The owner has no membership row and can
// therefore never be removed.
func (s *MembershipService) RemoveMember(projectID, targetUserID, requesterID uint64) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}

	if requesterID != project.OwnerID && requesterID != targetUserID {
		return apperrors.Permission("only the project owner or the member themselves can remove a membership")
	}

	if err := s.membershipRepo.RemoveMember(projectID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("membership")
		}
		return apperrors.Storage("remove member", err)
	}

	return nil
}

// IsMember reports whether the user is the owner or a member of the
// project, read fresh from the store.
func (s *MembershipService) IsMember(projectID, userID uint64) (bool, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return false, err
	}

	return s.policy.IsMember(project, userID)
}

// ListMembers returns the project and its memberships ordered by join time.
// Member-gated. The owner is not among the rows; callers render it first
// from the project itself.
func (s *MembershipService) ListMembers(projectID, requesterID uint64) (*models.Project, []models.Membership, error) {
	project, err := s.findProjectWithOwner(projectID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.policy.RequireMember(project, requesterID); err != nil {
		return nil, nil, err
	}

	members, err := s.membershipRepo.ListMembers(projectID)
	if err != nil {
		return nil, nil, apperrors.Storage("list members", err)
	}

	return project, members, nil
}

// ListPendingRequests returns the project's pending join requests, oldest
// first. Owner only.
func (s *MembershipService) ListPendingRequests(projectID, requesterID uint64) ([]models.JoinRequest, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireOwner(project, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.membershipRepo.ListPendingRequests(projectID)
	if err != nil {
		return nil, apperrors.Storage("list pending requests", err)
	}

	return requests, nil
}

func (s *MembershipService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("project")
		}
		return nil, apperrors.Storage("find project", err)
	}
	return project, nil
}

func (s *MembershipService) findProjectWithOwner(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByIDWithOwner(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("project")
		}
		return nil, apperrors.Storage("find project", err)
	}
	return project, nil
}

func (s *MembershipService) findRequestWithProject(requestID uint64) (*models.JoinRequest, *models.Project, error) {
	request, err := s.membershipRepo.FindJoinRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("join request")
		}
		return nil, nil, apperrors.Storage("find join request", err)
	}

	project, err := s.findProject(request.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	return request, project, nil
}
