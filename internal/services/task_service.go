package services

import (
	"encoding/csv"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/constants"
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
)

// csvHeader is the fixed export column order. Consumers parse these files;
// the header must not change.
var csvHeader = []string{"ID", "Title", "Description", "Status", "Priority", "Due Date", "Assignee", "Creator", "Created At"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	policy      *PolicyService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, policy *PolicyService) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		policy:      policy,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	CreatorID   uint64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *string
	AssigneeIDs []uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged; a non-nil AssigneeIDs replaces the whole assignee set.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *string
	ClearDueDate bool
	AssigneeIDs  *[]uint64
}

// TaskListFilter holds the optional task list filters, AND-combined.
type TaskListFilter struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *uint64
	DueFrom    *string
	DueTo      *string
}

// CreateTask creates a task in a project. Any project member can create;
// assignees must exist but need not be members.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	project, err := s.findProject(input.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(project, input.CreatorID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if len(title) < constants.MinTaskTitleLength {
		return nil, apperrors.Validationf("task title must be at least %d characters", constants.MinTaskTitleLength)
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.IsValidTaskStatus(status) {
		return nil, apperrors.Validationf("invalid task status %q", status)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskPriority(priority) {
		return nil, apperrors.Validationf("invalid task priority %q", priority)
	}

	if input.DueDate != nil {
		if err := validateDueDate(*input.DueDate); err != nil {
			return nil, err
		}
	}

	assigneeIDs, err := s.verifyAssignees(input.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
		CreatorID:   input.CreatorID,
	}

	if err := s.taskRepo.Create(task, assigneeIDs); err != nil {
		return nil, apperrors.Storage("create task", err)
	}

	return s.findTaskWithRelations(task.ID)
}

// GetTask returns a task with creator, project and assignees. Member-gated
// via the task's project.
func (s *TaskService) GetTask(taskID, requesterID uint64) (*models.Task, error) {
	task, err := s.findTaskWithRelations(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(&task.Project, requesterID); err != nil {
		return nil, err
	}

	return task, nil
}

// ListTasks returns a project's tasks matching the filter, newest first.
// Member-gated.
func (s *TaskService) ListTasks(projectID, requesterID uint64, filter TaskListFilter) ([]models.Task, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(project, requesterID); err != nil {
		return nil, err
	}

	if err := validateListFilter(filter); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		ProjectID:  &projectID,
		Status:     filter.Status,
		Priority:   filter.Priority,
		AssigneeID: filter.AssigneeID,
		DueFrom:    filter.DueFrom,
		DueTo:      filter.DueTo,
	})
	if err != nil {
		return nil, apperrors.Storage("list tasks", err)
	}

	for i := range tasks {
		sortAssignments(tasks[i].Assignments)
	}

	return tasks, nil
}

// UpdateTask updates a task. Permitted for the task creator or the project
// owner; the owner is read fresh from the project row.
func (s *TaskService) UpdateTask(taskID, requesterID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID, "Project")
	if err != nil {
		return nil, err
	}

	if !s.policy.CanModifyTask(task, &task.Project, requesterID) {
		return nil, apperrors.Permission("only the task creator or the project owner can modify this task")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < constants.MinTaskTitleLength {
			return nil, apperrors.Validationf("task title must be at least %d characters", constants.MinTaskTitleLength)
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.IsValidTaskStatus(*input.Status) {
			return nil, apperrors.Validationf("invalid task status %q", *input.Status)
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.IsValidTaskPriority(*input.Priority) {
			return nil, apperrors.Validationf("invalid task priority %q", *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		if err := validateDueDate(*input.DueDate); err != nil {
			return nil, err
		}
		task.DueDate = input.DueDate
	}

	var assigneeIDs *[]uint64
	if input.AssigneeIDs != nil {
		verified, err := s.verifyAssignees(*input.AssigneeIDs)
		if err != nil {
			return nil, err
		}
		assigneeIDs = &verified
	}

	if err := s.taskRepo.Update(task, assigneeIDs); err != nil {
		return nil, apperrors.Storage("update task", err)
	}

	return s.findTaskWithRelations(task.ID)
}

// DeleteTask removes a task and its assignments. Same guard as UpdateTask.
func (s *TaskService) DeleteTask(taskID, requesterID uint64) error {
	task, err := s.findTask(taskID, "Project")
	if err != nil {
		return err
	}

	if !s.policy.CanModifyTask(task, &task.Project, requesterID) {
		return apperrors.Permission("only the task creator or the project owner can delete this task")
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return apperrors.Storage("delete task", err)
	}

	return nil
}

// MarkDone sets a task's status to done. This is the one write path open to
// assignees, alongside the creator and the project owner.
func (s *TaskService) MarkDone(taskID, requesterID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID, "Project", "Assignments")
	if err != nil {
		return nil, err
	}

	if !s.policy.CanMarkDone(task, &task.Project, requesterID) {
		return nil, apperrors.Permission("only the task creator, the project owner or an assignee can complete this task")
	}

	task.Status = models.TaskStatusDone
	if err := s.taskRepo.Update(task, nil); err != nil {
		return nil, apperrors.Storage("update task", err)
	}

	return s.findTaskWithRelations(task.ID)
}

// ListAssignedTasks returns tasks assigned to the user across all projects,
// due date ascending with undated tasks last.
func (s *TaskService) ListAssignedTasks(userID uint64, status *models.TaskStatus) ([]models.Task, error) {
	if status != nil && !models.IsValidTaskStatus(*status) {
		return nil, apperrors.Validationf("invalid task status %q", *status)
	}

	tasks, err := s.taskRepo.ListAssignedTo(userID, status)
	if err != nil {
		return nil, apperrors.Storage("list assigned tasks", err)
	}

	for i := range tasks {
		sortAssignments(tasks[i].Assignments)
	}

	return tasks, nil
}

// ExportCSV renders a project's tasks as CSV in creation order,
// CRLF-terminated. Member-gated.
func (s *TaskService) ExportCSV(projectID, requesterID uint64) (string, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return "", err
	}

	if err := s.policy.RequireMember(project, requesterID); err != nil {
		return "", err
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{ProjectID: &projectID})
	if err != nil {
		return "", apperrors.Storage("list tasks", err)
	}

	// Listings read newest first; an export reads better oldest first.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true

	records := make([][]string, 0, len(tasks)+1)
	records = append(records, csvHeader)
	for _, task := range tasks {
		dueDate := ""
		if task.DueDate != nil {
			dueDate = *task.DueDate
		}

		records = append(records, []string{
			strconv.FormatUint(task.ID, 10),
			task.Title,
			task.Description,
			string(task.Status),
			string(task.Priority),
			dueDate,
			assigneeDisplay(task.Assignments),
			task.Creator.Username,
			task.CreatedAt.Format(time.RFC3339),
		})
	}

	if err := writer.WriteAll(records); err != nil {
		return "", apperrors.Storage("encode csv", err)
	}

	return buf.String(), nil
}

// verifyAssignees deduplicates the IDs and checks every one refers to an
// existing user. Assignees need not be project members.
func (s *TaskService) verifyAssignees(ids []uint64) ([]uint64, error) {
	unique := uniqueUint64(ids)
	if len(unique) == 0 {
		return unique, nil
	}

	count, err := s.taskRepo.CountUsersByIDs(unique)
	if err != nil {
		return nil, apperrors.Storage("verify assignees", err)
	}
	if int(count) != len(unique) {
		return nil, apperrors.Validation("one or more assignees do not exist")
	}

	return unique, nil
}

func (s *TaskService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("project")
		}
		return nil, apperrors.Storage("find project", err)
	}
	return project, nil
}

func (s *TaskService) findTask(taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("task")
		}
		return nil, apperrors.Storage("find task", err)
	}
	return task, nil
}

func (s *TaskService) findTaskWithRelations(taskID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID, "Creator", "Project", "Assignments", "Assignments.User")
	if err != nil {
		return nil, err
	}

	sortAssignments(task.Assignments)
	return task, nil
}

func validateDueDate(value string) error {
	if _, err := time.Parse(constants.DueDateLayout, value); err != nil {
		return apperrors.Validationf("invalid due date %q, expected YYYY-MM-DD", value)
	}
	return nil
}

func validateListFilter(filter TaskListFilter) error {
	if filter.Status != nil && !models.IsValidTaskStatus(*filter.Status) {
		return apperrors.Validationf("invalid task status %q", *filter.Status)
	}
	if filter.Priority != nil && !models.IsValidTaskPriority(*filter.Priority) {
		return apperrors.Validationf("invalid task priority %q", *filter.Priority)
	}
	if filter.DueFrom != nil {
		if err := validateDueDate(*filter.DueFrom); err != nil {
			return err
		}
	}
	if filter.DueTo != nil {
		if err := validateDueDate(*filter.DueTo); err != nil {
			return err
		}
	}
	return nil
}

// sortAssignments orders assignments by username so assignee lists render
// deterministically. Requires User to be preloaded.
func sortAssignments(assignments []models.TaskAssignment) {
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].User.Username < assignments[j].User.Username
	})
}

// assigneeDisplay joins assignee usernames as "a, b" in username order.
func assigneeDisplay(assignments []models.TaskAssignment) string {
	if len(assignments) == 0 {
		return ""
	}

	names := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		names = append(names, assignment.User.Username)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
