package tasks

import (
	"context"
	"fmt"
	"time"
)

// newDBMaintenanceTask creates the scheduled task that compacts and
// re-analyzes the record index database.
func newDBMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "db_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled database maintenance...")
		startTime := time.Now()

		err := deps.Store.RunSQLMaintenance(ctx)
		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Database maintenance failed", "error", err, "duration", duration)
			return fmt.Errorf("database maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Database maintenance completed", "duration", duration)
		return nil
	}
}
