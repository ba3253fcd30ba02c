package models

import "time"

// TaskAssignment links a task to an assignee. Assignees are not required to
// be members of the task's project.
type TaskAssignment struct {
	TaskID    uint64    `gorm:"primarykey;autoIncrement:false" json:"task_id"`
	UserID    uint64    `gorm:"primarykey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
