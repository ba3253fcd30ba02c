package services

import (
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
)

// PolicyService is the access control decision layer. Checks read current
// rows on every call; no authorization state is cached between requests.
type PolicyService struct {
	membershipRepo repository.MembershipRepository
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(membershipRepo repository.MembershipRepository) *PolicyService {
	return &PolicyService{
		membershipRepo: membershipRepo,
	}
}

// IsMember reports whether the user is the project owner or holds a
// membership row. The owner never has a row; ownership alone qualifies.
func (s *PolicyService) IsMember(project *models.Project, userID uint64) (bool, error) {
	if project.OwnerID == userID {
		return true, nil
	}

	ok, err := s.membershipRepo.HasMember(project.ID, userID)
	if err != nil {
		return false, apperrors.Storage("check membership", err)
	}
	return ok, nil
}

// RequireMember returns a permission error unless the user is the owner or
// a member of the project.
func (s *PolicyService) RequireMember(project *models.Project, userID uint64) error {
	ok, err := s.IsMember(project, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Permission("user is not a member of this project")
	}
	return nil
}

// RequireOwner returns a permission error unless the user owns the project.
func (s *PolicyService) RequireOwner(project *models.Project, userID uint64) error {
	if project.OwnerID != userID {
		return apperrors.Permission("only the project owner can perform this action")
	}
	return nil
}

// CanModifyTask reports whether the user may edit or delete the task: the
// task creator or the project owner. Assignee status grants no edit rights.
func (s *PolicyService) CanModifyTask(task *models.Task, project *models.Project, userID uint64) bool {
	return task.CreatorID == userID || project.OwnerID == userID
}

// CanMarkDone reports whether the user may mark the task done: the creator,
// the project owner, or a current assignee. Requires task.Assignments to be
// loaded.
func (s *PolicyService) CanMarkDone(task *models.Task, project *models.Project, userID uint64) bool {
	if s.CanModifyTask(task, project, userID) {
		return true
	}
	for _, assignment := range task.Assignments {
		if assignment.UserID == userID {
			return true
		}
	}
	return false
}
