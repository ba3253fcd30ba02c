package models

import "time"

// Membership links a user to a project they have joined. The project owner
// is never stored as a row here; owner membership is always derived.
type Membership struct {
	ProjectID uint64    `gorm:"primarykey;autoIncrement:false" json:"project_id"`
	UserID    uint64    `gorm:"primarykey;autoIncrement:false;index" json:"user_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
