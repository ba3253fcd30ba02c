package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/models"
)

// ErrDuplicateKey is returned when an insert violates a uniqueness
// constraint, regardless of driver.
var ErrDuplicateKey = errors.New("repository: duplicate key")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByIDs returns the users matching the given IDs
	FindByIDs(ids []uint64) ([]models.User, error)

	// List returns all users ordered by username ascending
	List() ([]models.User, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindByIDWithOwner finds a project with its owner preloaded
	FindByIDWithOwner(id uint64) (*models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and everything referencing it in one
	// transaction: task assignments, tasks, memberships, join requests.
	Delete(id uint64) error

	// Search finds projects whose name contains the term, case-insensitively,
	// newest first
	Search(term string) ([]models.Project, error)

	// ListAll returns all projects, newest first
	ListAll() ([]models.Project, error)

	// ListByOwner returns projects owned by the user, newest first
	ListByOwner(ownerID uint64) ([]models.Project, error)

	// ListAccessibleTo returns projects the user owns or is a member of,
	// newest first
	ListAccessibleTo(userID uint64) ([]models.Project, error)

	// CountActiveAccessibleTo counts in-progress projects the user can access
	CountActiveAccessibleTo(userID uint64) (int64, error)
}

// MembershipRepository defines the interface for membership and join-request
// data access
type MembershipRepository interface {
	// HasMember reports whether a membership row exists for the pair
	HasMember(projectID, userID uint64) (bool, error)

	// AddMember inserts a membership and resolves any pending join request
	// for the pair in one transaction
	AddMember(projectID, userID uint64) error

	// RemoveMember deletes the membership row; gorm.ErrRecordNotFound when
	// no row exists
	RemoveMember(projectID, userID uint64) error

	// ListMembers returns memberships of a project with users preloaded,
	// ordered by join time ascending
	ListMembers(projectID uint64) ([]models.Membership, error)

	// CreateJoinRequest inserts a pending request, guarding against an
	// existing membership or pending request within one transaction
	CreateJoinRequest(projectID, userID uint64) (*models.JoinRequest, error)

	// FindJoinRequest finds a join request by ID
	FindJoinRequest(id uint64) (*models.JoinRequest, error)

	// ApproveJoinRequest inserts the membership and flips the request to
	// approved in one transaction; both writes succeed or neither does
	ApproveJoinRequest(request *models.JoinRequest) error

	// RejectJoinRequest flips a pending request to rejected
	RejectJoinRequest(request *models.JoinRequest) error

	// ListPendingRequests returns pending requests for a project with users
	// preloaded, oldest first
	ListPendingRequests(projectID uint64) ([]models.JoinRequest, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task and its assignee rows in one transaction
	Create(task *models.Task, assigneeIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter, newest first
	List(filter TaskFilter) ([]models.Task, error)

	// ListAssignedTo returns tasks assigned to the user, due date ascending
	// with undated tasks last
	ListAssignedTo(userID uint64, status *models.TaskStatus) ([]models.Task, error)

	// Update saves task fields and, when assigneeIDs is non-nil, replaces
	// the whole assignee set, all in one transaction
	Update(task *models.Task, assigneeIDs *[]uint64) error

	// Delete removes a task and its assignments in one transaction
	Delete(id uint64) error

	// CountAssignedTo counts tasks assigned to the user with the given status
	CountAssignedTo(userID uint64, status models.TaskStatus) (int64, error)

	// CountUsersByIDs counts how many of the given user IDs exist
	CountUsersByIDs(userIDs []uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks. All set filters are
// AND-combined. Due-date bounds are inclusive YYYY-MM-DD strings.
type TaskFilter struct {
	ProjectID  *uint64
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *uint64
	DueFrom    *string
	DueTo      *string
}

// isDuplicateKeyError recognizes uniqueness violations across the sqlite,
// mysql and postgres drivers.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
