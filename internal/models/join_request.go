package models

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// JoinRequest is a user's petition to join a project. Approved and rejected
// requests are kept as history; only a pending request blocks a new one for
// the same (project, user) pair.
type JoinRequest struct {
	ID        uint64        `gorm:"primarykey" json:"id"`
	ProjectID uint64        `gorm:"not null;index" json:"project_id"`
	UserID    uint64        `gorm:"not null;index" json:"user_id"`
	Status    RequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
