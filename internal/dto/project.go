package dto

import (
	"time"

	"github.com/highcommand/highcommand/internal/models"
)

// Derived member roles. Ownership is a column on the project, not a
// membership row, so the role only exists in responses.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	OwnerID     uint64               `json:"owner_id"`
	OwnerName   string               `json:"owner_name,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// MemberDTO represents a project member with its derived role
type MemberDTO struct {
	User     UserDTO   `json:"user"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// JoinRequestDTO represents a join request in API responses
type JoinRequestDTO struct {
	ID        uint64               `json:"id"`
	ProjectID uint64               `json:"project_id"`
	User      UserDTO              `json:"user"`
	Status    models.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
	}

	// Include owner name if preloaded
	if project.Owner.ID != 0 {
		dto.OwnerName = project.Owner.Username
	}

	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}

// ToMemberDTOs renders the member list for a project: the owner first with
// joined-at equal to the project creation time, then membership rows in the
// order given (join time ascending).
func ToMemberDTOs(project models.Project, members []models.Membership) []MemberDTO {
	dtos := make([]MemberDTO, 0, len(members)+1)
	dtos = append(dtos, MemberDTO{
		User:     ToUserDTO(project.Owner),
		Role:     RoleOwner,
		JoinedAt: project.CreatedAt,
	})

	for _, member := range members {
		dtos = append(dtos, MemberDTO{
			User:     ToUserDTO(member.User),
			Role:     RoleMember,
			JoinedAt: member.JoinedAt,
		})
	}

	return dtos
}

// ToJoinRequestDTO converts a JoinRequest model to JoinRequestDTO
func ToJoinRequestDTO(request models.JoinRequest) JoinRequestDTO {
	return JoinRequestDTO{
		ID:        request.ID,
		ProjectID: request.ProjectID,
		User:      ToUserDTO(request.User),
		Status:    request.Status,
		CreatedAt: request.CreatedAt,
	}
}

// ToJoinRequestDTOs converts a slice of join requests
func ToJoinRequestDTOs(requests []models.JoinRequest) []JoinRequestDTO {
	dtos := make([]JoinRequestDTO, len(requests))
	for i, request := range requests {
		dtos[i] = ToJoinRequestDTO(request)
	}
	return dtos
}
