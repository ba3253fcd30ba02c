package repository

import (
	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/database"
	"github.com/highcommand/highcommand/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a task and its assignee rows in one transaction
func (r *GormTaskRepository) Create(task *models.Task, assigneeIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		if len(assigneeIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskAssignment, len(assigneeIDs))
		for i, userID := range assigneeIDs {
			assignments[i] = models.TaskAssignment{
				TaskID: task.ID,
				UserID: userID,
			}
		}
		return tx.Create(&assignments).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks matching the filter, newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	query := r.db.Model(&models.Task{})

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssigneeID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}
	// Due date bounds are inclusive on both ends. Dates are stored as
	// YYYY-MM-DD strings, so string comparison orders them correctly.
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueTo)
	}

	var tasks []models.Task
	if err := query.Scopes(database.NewestFirst).
		Preload("Creator").
		Preload("Assignments.User").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListAssignedTo returns tasks assigned to the user, due date ascending
// with undated tasks last
func (r *GormTaskRepository) ListAssignedTo(userID uint64, status *models.TaskStatus) ([]models.Task, error) {
	query := r.db.Model(&models.Task{}).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID)

	if status != nil {
		query = query.Where("tasks.status = ?", *status)
	}

	var tasks []models.Task
	if err := query.Scopes(database.DueDateNullsLast).
		Preload("Project").
		Preload("Creator").
		Preload("Assignments.User").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update saves task fields and, when assigneeIDs is non-nil, replaces the
// whole assignee set, all in one transaction
func (r *GormTaskRepository) Update(task *models.Task, assigneeIDs *[]uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if assigneeIDs == nil {
			return nil
		}

		if err := tx.Where("task_id = ?", task.ID).
			Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if len(*assigneeIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskAssignment, len(*assigneeIDs))
		for i, userID := range *assigneeIDs {
			assignments[i] = models.TaskAssignment{
				TaskID: task.ID,
				UserID: userID,
			}
		}
		return tx.Create(&assignments).Error
	})
}

// Delete removes a task and its assignments in one transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).
			Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// CountAssignedTo counts tasks assigned to the user with the given status
func (r *GormTaskRepository) CountAssignedTo(userID uint64, status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ? AND tasks.status = ?", userID, status).
		Count(&count).Error
	return count, err
}

// CountUsersByIDs counts how many of the given user IDs exist
func (r *GormTaskRepository) CountUsersByIDs(userIDs []uint64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.Model(&models.User{}).
		Where("id IN ?", userIDs).
		Count(&count).Error
	return count, err
}
