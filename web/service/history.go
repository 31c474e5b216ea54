package service

import (
	"time"

	"recipe-box/database"
	"recipe-box/database/model"
)

// historyRecent is how many past searches the home page shows.
const historyRecent = 10

// HistoryService keeps per-user recent searches.
type HistoryService struct {
	SettingService
}

// RecordSearch appends a search to the user's history. A query equal to the
// user's previous one is not duplicated.
func (s *HistoryService) RecordSearch(userId int, query string) error {
	db := database.GetDB()

	last := &model.SearchRecord{}
	err := db.Model(model.SearchRecord{}).
		Where("user_id = ?", userId).
		Order("id desc").
		First(last).
		Error
	if err == nil && last.Query == query {
		return nil
	} else if err != nil && !database.IsNotFound(err) {
		return err
	}

	return db.Create(&model.SearchRecord{
		UserId: userId,
		Query:  query,
	}).Error
}

// RecentSearches returns the user's latest distinct queries, newest first.
func (s *HistoryService) RecentSearches(userId int) ([]string, error) {
	db := database.GetDB()

	records := make([]*model.SearchRecord, 0)
	err := db.Model(model.SearchRecord{}).
		Select("query, MAX(id) AS id").
		Where("user_id = ?", userId).
		Group("query").
		Order("id DESC").
		Limit(historyRecent).
		Find(&records).
		Error
	if err != nil {
		return nil, err
	}

	queries := make([]string, 0, len(records))
	for _, record := range records {
		queries = append(queries, record.Query)
	}
	return queries, nil
}

// ClearHistory removes every stored search of the user.
func (s *HistoryService) ClearHistory(userId int) error {
	db := database.GetDB()
	return db.Where("user_id = ?", userId).Delete(model.SearchRecord{}).Error
}

// PruneOld deletes search records older than the configured retention window
// and reports how many rows went away.
func (s *HistoryService) PruneOld() (int64, error) {
	days, err := s.SettingService.GetHistoryRetentionDays()
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -days).Unix()
	db := database.GetDB()
	result := db.Where("created_at < ?", cutoff).Delete(model.SearchRecord{})
	return result.RowsAffected, result.Error
}
