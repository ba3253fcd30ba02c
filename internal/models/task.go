package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValidTaskStatus reports whether s is one of the closed set of task
// statuses.
func IsValidTaskStatus(s TaskStatus) bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusDone
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValidTaskPriority reports whether p is one of the closed set of task
// priorities.
func IsValidTaskPriority(p TaskPriority) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	// DueDate is a calendar date in YYYY-MM-DD form. Stored as text so range
	// filters can compare lexicographically.
	DueDate   *string   `gorm:"type:varchar(10)" json:"due_date"`
	ProjectID uint64    `gorm:"not null;index" json:"project_id"`
	CreatorID uint64    `gorm:"not null;index" json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Project     Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator     User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}
