package job

import (
	"os"

	"miniblog/logger"
)

// ClearLogsJob rotates the app log: the current file is copied onto the
// .prev file and truncated, keeping one generation of history.
type ClearLogsJob struct{}

func NewClearLogsJob() *ClearLogsJob {
	return new(ClearLogsJob)
}

// Run implements cron.Job.
func (j *ClearLogsJob) Run() {
	logPath := logger.GetLogPath()
	prevPath := logPath + ".prev"

	data, err := os.ReadFile(logPath)
	if err != nil {
		logger.Warning("clear logs job err:", err)
		return
	}
	if err := os.WriteFile(prevPath, data, 0o660); err != nil {
		logger.Warning("clear logs job err:", err)
		return
	}
	if err := os.Truncate(logPath, 0); err != nil {
		logger.Warning("clear logs job err:", err)
	}
}
