package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	PasswordSalt string    `gorm:"type:varchar(64);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	OwnedProjects []Project        `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships   []Membership     `gorm:"foreignKey:UserID" json:"-"`
	CreatedTasks  []Task           `gorm:"foreignKey:CreatorID" json:"-"`
	Assignments   []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
}
