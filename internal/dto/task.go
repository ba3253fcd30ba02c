package dto

import (
	"time"

	"github.com/highcommand/highcommand/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TaskDTO represents a task in API responses. Assignees are ordered by
// username.
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *string             `json:"due_date"`
	ProjectID   uint64              `json:"project_id"`
	ProjectName string              `json:"project_name,omitempty"`
	CreatorID   uint64              `json:"creator_id"`
	CreatorName string              `json:"creator_name,omitempty"`
	Assignees   []UserDTO           `json:"assignees"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		ProjectID:   task.ProjectID,
		CreatorID:   task.CreatorID,
		Assignees:   []UserDTO{},
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include names if the relations are preloaded
	if task.Project.ID != 0 {
		dto.ProjectName = task.Project.Name
	}
	if task.Creator.ID != 0 {
		dto.CreatorName = task.Creator.Username
	}
	for _, assignment := range task.Assignments {
		dto.Assignees = append(dto.Assignees, ToUserDTO(assignment.User))
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
