package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/constants"
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	policy      *PolicyService
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, policy *PolicyService) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		policy:      policy,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// CreateProject creates a new project owned by the given user.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < constants.MinProjectNameLength {
		return nil, apperrors.Validationf("project name must be at least %d characters", constants.MinProjectNameLength)
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Status:      models.ProjectStatusInProgress,
		OwnerID:     input.OwnerID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, apperrors.Storage("create project", err)
	}

	return s.findWithOwner(project.ID)
}

// GetProject returns a project with its owner. Viewing detail is
// member-gated.
func (s *ProjectService) GetProject(projectID, requesterID uint64) (*models.Project, error) {
	project, err := s.findWithOwner(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(project, requesterID); err != nil {
		return nil, err
	}

	return project, nil
}

// UpdateProjectInput carries optional fields for a partial update. Nil
// means leave unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// UpdateProject updates the supplied fields of a project. Owner only.
// Guards run in order: existence, ownership, field validation.
func (s *ProjectService) UpdateProject(projectID, requesterID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.findWithOwner(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireOwner(project, requesterID); err != nil {
		return nil, err
	}

	if input.Name == nil && input.Description == nil {
		return nil, apperrors.Validation("at least one of name or description is required")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < constants.MinProjectNameLength {
			return nil, apperrors.Validationf("project name must be at least %d characters", constants.MinProjectNameLength)
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, apperrors.Storage("update project", err)
	}

	return project, nil
}

// UpdateProjectStatus sets the project status. Owner only. The status check
// runs before the existence check.
func (s *ProjectService) UpdateProjectStatus(projectID, requesterID uint64, status models.ProjectStatus) (*models.Project, error) {
	if !models.IsValidProjectStatus(status) {
		return nil, apperrors.Validationf("invalid project status %q", status)
	}

	project, err := s.findWithOwner(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireOwner(project, requesterID); err != nil {
		return nil, err
	}

	project.Status = status
	if err := s.projectRepo.Update(project); err != nil {
		return nil, apperrors.Storage("update project status", err)
	}

	return project, nil
}

// DeleteProject removes a project and cascades to its memberships, join
// requests, tasks and task assignments. Owner only.
func (s *ProjectService) DeleteProject(projectID, requesterID uint64) error {
	project, err := s.findWithOwner(projectID)
	if err != nil {
		return err
	}

	if err := s.policy.RequireOwner(project, requesterID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return apperrors.Storage("delete project", err)
	}

	return nil
}

// ListProjects returns all projects, or a case-insensitive name search when
// the term is non-empty. The browse list is public to signed-in users.
func (s *ProjectService) ListProjects(searchTerm string) ([]models.Project, error) {
	term := strings.TrimSpace(searchTerm)

	var (
		projects []models.Project
		err      error
	)
	if term == "" {
		projects, err = s.projectRepo.ListAll()
	} else {
		projects, err = s.projectRepo.Search(term)
	}
	if err != nil {
		return nil, apperrors.Storage("list projects", err)
	}

	return projects, nil
}

// ListOwnedProjects returns projects owned by the user, newest first.
func (s *ProjectService) ListOwnedProjects(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByOwner(userID)
	if err != nil {
		return nil, apperrors.Storage("list owned projects", err)
	}
	return projects, nil
}

// ListAccessibleProjects returns projects the user owns or is a member of,
// newest first, each project once.
func (s *ProjectService) ListAccessibleProjects(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListAccessibleTo(userID)
	if err != nil {
		return nil, apperrors.Storage("list accessible projects", err)
	}
	return projects, nil
}

// CountActiveAccessible counts in-progress projects the user owns or is a
// member of.
func (s *ProjectService) CountActiveAccessible(userID uint64) (int64, error) {
	count, err := s.projectRepo.CountActiveAccessibleTo(userID)
	if err != nil {
		return 0, apperrors.Storage("count active projects", err)
	}
	return count, nil
}

func (s *ProjectService) findWithOwner(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByIDWithOwner(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("project")
		}
		return nil, apperrors.Storage("find project", err)
	}
	return project, nil
}
