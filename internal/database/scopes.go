package database

import "gorm.io/gorm"

// NewestFirst orders rows by creation time, newest first.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// DueDateNullsLast orders tasks by due date ascending with undated tasks
// last, newest-created first as the tie-break.
func DueDateNullsLast(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC, tasks.created_at DESC")
}
