package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/database"
	"github.com/highcommand/highcommand/internal/models"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDWithOwner finds a project with its owner preloaded
func (r *GormProjectRepository) FindByIDWithOwner(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.Preload("Owner").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Assignments of this project's tasks go first, then the tasks
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.JoinRequest{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// Search finds projects whose name contains the term, case-insensitively
func (r *GormProjectRepository) Search(term string) ([]models.Project, error) {
	var projects []models.Project
	pattern := "%" + strings.ToLower(term) + "%"
	if err := r.db.Preload("Owner").
		Where("LOWER(name) LIKE ?", pattern).
		Scopes(database.NewestFirst).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListAll returns all projects, newest first
func (r *GormProjectRepository) ListAll() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Preload("Owner").
		Scopes(database.NewestFirst).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByOwner returns projects owned by the user, newest first
func (r *GormProjectRepository) ListByOwner(ownerID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Preload("Owner").
		Where("owner_id = ?", ownerID).
		Scopes(database.NewestFirst).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListAccessibleTo returns projects the user owns or is a member of
func (r *GormProjectRepository) ListAccessibleTo(userID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Preload("Owner").
		Where("owner_id = ? OR EXISTS (SELECT 1 FROM memberships m WHERE m.project_id = projects.id AND m.user_id = ?)",
			userID, userID).
		Scopes(database.NewestFirst).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// CountActiveAccessibleTo counts in-progress projects the user can access
func (r *GormProjectRepository) CountActiveAccessibleTo(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("status = ?", models.ProjectStatusInProgress).
		Where("owner_id = ? OR EXISTS (SELECT 1 FROM memberships m WHERE m.project_id = projects.id AND m.user_id = ?)",
			userID, userID).
		Count(&count).Error
	return count, err
}
