package job

import (
	"recipe-box/database"
	"recipe-box/logger"
)

// WalCheckpointJob folds the sqlite write-ahead log back into the main
// database file so the WAL does not grow without bound.
type WalCheckpointJob struct{}

func NewWalCheckpointJob() *WalCheckpointJob {
	return new(WalCheckpointJob)
}

// Here Run is an interface method of the Job interface
func (j *WalCheckpointJob) Run() {
	if err := database.Checkpoint(); err != nil {
		logger.Warning("wal checkpoint job err:", err)
	}
}
