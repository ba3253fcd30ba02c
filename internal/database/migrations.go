package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/models"
)

// AddIndexes adds the composite indexes used by the hot listing queries.
// Single-column indexes come from the model tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model any
		name  string
		sql   string
	}{
		{&models.Task{}, "idx_tasks_project_status", "CREATE INDEX idx_tasks_project_status ON tasks (project_id, status)"},
		{&models.Task{}, "idx_tasks_due_date", "CREATE INDEX idx_tasks_due_date ON tasks (due_date)"},
		{&models.JoinRequest{}, "idx_join_requests_project_status", "CREATE INDEX idx_join_requests_project_status ON join_requests (project_id, status)"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
