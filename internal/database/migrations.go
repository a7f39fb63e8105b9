package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/timetracker-api/internal/logger"
)

// AddIndexes adds the composite indexes used by listing queries. Single
// column indexes come from model tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Time entry listings filter by owner or project and sort by start time
		{"time_entries", "idx_time_entries_user_start", "user_id, start_time"},
		{"time_entries", "idx_time_entries_project_status", "project_id, status"},

		// Task listings per project
		{"tasks", "idx_tasks_project_status", "project_id, status"},

		// Reverse membership lookups
		{"project_team_members", "idx_project_team_members_user", "user_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logger.L().Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.L().Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}
