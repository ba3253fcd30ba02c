package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/models"
)

var (
	// ErrAlreadyMember is returned when inserting a membership or join
	// request for a user who already has a membership row.
	ErrAlreadyMember = errors.New("membership repository: user is already a member")
	// ErrRequestPending is returned when a pending join request already
	// exists for the pair.
	ErrRequestPending = errors.New("membership repository: join request already pending")
	// ErrRequestResolved is returned when resolving a request that is no
	// longer pending.
	ErrRequestResolved = errors.New("membership repository: join request already resolved")
)

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

// HasMember reports whether a membership row exists for the pair
func (r *GormMembershipRepository) HasMember(projectID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddMember inserts a membership row and resolves any pending join request
// for the pair, keeping the pair's state unambiguous.
func (r *GormMembershipRepository) AddMember(projectID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		member := &models.Membership{ProjectID: projectID, UserID: userID}
		if err := tx.Create(member).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrAlreadyMember
			}
			return err
		}

		return tx.Model(&models.JoinRequest{}).
			Where("project_id = ? AND user_id = ? AND status = ?",
				projectID, userID, models.RequestStatusPending).
			Update("status", models.RequestStatusApproved).Error
	})
}

// RemoveMember deletes the membership row for the pair
func (r *GormMembershipRepository) RemoveMember(projectID, userID uint64) error {
	result := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMembers returns memberships of a project ordered by join time
func (r *GormMembershipRepository) ListMembers(projectID uint64) ([]models.Membership, error) {
	var members []models.Membership
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CreateJoinRequest inserts a pending request for the pair. The membership
// and pending-request guards run inside the same transaction as the insert
// so concurrent duplicates resolve to ErrAlreadyMember / ErrRequestPending.
func (r *GormMembershipRepository) CreateJoinRequest(projectID, userID uint64) (*models.JoinRequest, error) {
	request := &models.JoinRequest{
		ProjectID: projectID,
		UserID:    userID,
		Status:    models.RequestStatusPending,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Membership{}).
			Where("project_id = ? AND user_id = ?", projectID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyMember
		}

		if err := tx.Model(&models.JoinRequest{}).
			Where("project_id = ? AND user_id = ? AND status = ?",
				projectID, userID, models.RequestStatusPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrRequestPending
		}

		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// FindJoinRequest finds a join request by ID with its user preloaded
func (r *GormMembershipRepository) FindJoinRequest(id uint64) (*models.JoinRequest, error) {
	var request models.JoinRequest
	if err := r.db.Preload("User").First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ApproveJoinRequest flips a pending request to approved and inserts the
// membership. The status flip is a compare-and-swap on the pending state,
// so a request resolved elsewhere fails with ErrRequestResolved and rolls
// back the membership insert.
func (r *GormMembershipRepository) ApproveJoinRequest(request *models.JoinRequest) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.JoinRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestStatusPending).
			Update("status", models.RequestStatusApproved)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRequestResolved
		}

		member := &models.Membership{ProjectID: request.ProjectID, UserID: request.UserID}
		if err := tx.Create(member).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrAlreadyMember
			}
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	request.Status = models.RequestStatusApproved
	return nil
}

// RejectJoinRequest flips a pending request to rejected
func (r *GormMembershipRepository) RejectJoinRequest(request *models.JoinRequest) error {
	result := r.db.Model(&models.JoinRequest{}).
		Where("id = ? AND status = ?", request.ID, models.RequestStatusPending).
		Update("status", models.RequestStatusRejected)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestResolved
	}

	request.Status = models.RequestStatusRejected
	return nil
}

// ListPendingRequests returns pending requests for a project, oldest first
func (r *GormMembershipRepository) ListPendingRequests(projectID uint64) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.Preload("User").
		Where("project_id = ? AND status = ?", projectID, models.RequestStatusPending).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
