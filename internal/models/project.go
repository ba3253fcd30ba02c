package models

import "time"

type ProjectStatus string

const (
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// IsValidProjectStatus reports whether s is one of the closed set of
// project statuses.
func IsValidProjectStatus(s ProjectStatus) bool {
	return s == ProjectStatusInProgress || s == ProjectStatusCompleted
}

type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'in-progress';index" json:"status"`
	OwnerID     uint64        `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	Owner        User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Memberships  []Membership  `gorm:"foreignKey:ProjectID" json:"memberships,omitempty"`
	JoinRequests []JoinRequest `gorm:"foreignKey:ProjectID" json:"join_requests,omitempty"`
	Tasks        []Task        `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
