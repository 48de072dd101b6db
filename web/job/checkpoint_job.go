// Package job holds the scheduled maintenance tasks run by the web
// server's cron instance.
package job

import (
	"miniblog/database"
	"miniblog/logger"

	"gorm.io/gorm"
)

// CheckpointJob flushes the sqlite WAL into the main database file so the
// db file on disk stays current between restarts.
type CheckpointJob struct {
	db *gorm.DB
}

func NewCheckpointJob(db *gorm.DB) *CheckpointJob {
	return &CheckpointJob{db: db}
}

// Run implements cron.Job.
func (j *CheckpointJob) Run() {
	if err := database.Checkpoint(j.db); err != nil {
		logger.Warning("wal checkpoint job err:", err)
	}
}
