package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recipe-box/database"
	"recipe-box/database/model"
)

func TestRecordAndRecentSearches(t *testing.T) {
	setup()
	defer teardown()

	service := HistoryService{}

	assert.NoError(t, service.RecordSearch(1, "pasta"))
	assert.NoError(t, service.RecordSearch(1, "pasta")) // consecutive duplicate
	assert.NoError(t, service.RecordSearch(1, "soup"))
	assert.NoError(t, service.RecordSearch(1, "pasta")) // searched again later
	assert.NoError(t, service.RecordSearch(2, "cake"))  // another user

	recent, err := service.RecentSearches(1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"pasta", "soup"}, recent)

	recent, err = service.RecentSearches(2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"cake"}, recent)
}

func TestRecentSearchesLimit(t *testing.T) {
	setup()
	defer teardown()

	service := HistoryService{}

	queries := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for _, q := range queries {
		assert.NoError(t, service.RecordSearch(1, q))
	}

	recent, err := service.RecentSearches(1)
	assert.NoError(t, err)
	assert.Len(t, recent, 10)
	assert.Equal(t, "l", recent[0])
}

func TestClearHistory(t *testing.T) {
	setup()
	defer teardown()

	service := HistoryService{}

	assert.NoError(t, service.RecordSearch(1, "pasta"))
	assert.NoError(t, service.RecordSearch(2, "cake"))

	assert.NoError(t, service.ClearHistory(1))

	recent, err := service.RecentSearches(1)
	assert.NoError(t, err)
	assert.Empty(t, recent)

	// Other users keep their history
	recent, err = service.RecentSearches(2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"cake"}, recent)
}

func TestPruneOld(t *testing.T) {
	setup()
	defer teardown()

	service := HistoryService{}
	db := database.GetDB()

	// One stale record past the 30 day default, one fresh
	stale := &model.SearchRecord{
		UserId:    1,
		Query:     "forgotten",
		CreatedAt: time.Now().AddDate(0, 0, -40).Unix(),
	}
	assert.NoError(t, db.Create(stale).Error)
	assert.NoError(t, service.RecordSearch(1, "fresh"))

	pruned, err := service.PruneOld()
	assert.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	recent, err := service.RecentSearches(1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, recent)
}
