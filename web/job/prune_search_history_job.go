package job

import (
	"recipe-box/logger"
	"recipe-box/web/service"
)

// PruneSearchHistoryJob deletes search records older than the retention window.
type PruneSearchHistoryJob struct {
	historyService service.HistoryService
}

func NewPruneSearchHistoryJob() *PruneSearchHistoryJob {
	return new(PruneSearchHistoryJob)
}

// Run prunes expired search history rows.
func (j *PruneSearchHistoryJob) Run() {
	pruned, err := j.historyService.PruneOld()
	if err != nil {
		logger.Warning("prune search history job err:", err)
		return
	}
	if pruned > 0 {
		logger.Debugf("pruned %d expired search records", pruned)
	}
}
