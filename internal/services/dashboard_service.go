package services

import (
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
)

// DashboardSummary holds the signed-in user's home screen counters.
type DashboardSummary struct {
	ActiveProjects  int64 `json:"active_projects"`
	TodoTasks       int64 `json:"todo_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
}

// DashboardService aggregates per-user counters.
type DashboardService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *DashboardService {
	return &DashboardService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

// Summary returns the user's in-progress accessible project count and their
// assigned task counts by status.
func (s *DashboardService) Summary(userID uint64) (*DashboardSummary, error) {
	activeProjects, err := s.projectRepo.CountActiveAccessibleTo(userID)
	if err != nil {
		return nil, apperrors.Storage("count active projects", err)
	}

	todoTasks, err := s.taskRepo.CountAssignedTo(userID, models.TaskStatusTodo)
	if err != nil {
		return nil, apperrors.Storage("count todo tasks", err)
	}

	inProgressTasks, err := s.taskRepo.CountAssignedTo(userID, models.TaskStatusInProgress)
	if err != nil {
		return nil, apperrors.Storage("count in-progress tasks", err)
	}

	return &DashboardSummary{
		ActiveProjects:  activeProjects,
		TodoTasks:       todoTasks,
		InProgressTasks: inProgressTasks,
	}, nil
}
