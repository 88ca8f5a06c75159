package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epasquet/boursobot/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeForumFirstWins(t *testing.T) {
	existing := []models.ForumHistoryEntry{
		{Date: day(2024, 3, 15), Hour: 10, Minute: 0, Posts: 100},
	}
	retry := models.ForumHistoryEntry{Date: day(2024, 3, 15), Hour: 10, Minute: 40, Posts: 120}

	merged := MergeForum(existing, retry)
	require.Len(t, merged, 1)
	assert.Equal(t, 100, merged[0].Posts, "earlier row for the slot must win")
	assert.Equal(t, 0, merged[0].Minute)

	// merging the same row again changes nothing
	again := MergeForum(merged, retry)
	assert.Equal(t, merged, again)
}

func TestMergeForumKeepsDistinctSlots(t *testing.T) {
	existing := []models.ForumHistoryEntry{
		{Date: day(2024, 3, 15), Hour: 10, Posts: 100},
	}
	merged := MergeForum(existing, models.ForumHistoryEntry{Date: day(2024, 3, 15), Hour: 11, Posts: 90})
	merged = MergeForum(merged, models.ForumHistoryEntry{Date: day(2024, 3, 16), Hour: 10, Posts: 80})
	assert.Len(t, merged, 3)
}

func TestMergePreopenKeyedByMinute(t *testing.T) {
	existing := []models.PreopenHistoryEntry{
		{Date: day(2024, 3, 15), Hour: 8, Minute: 0, PreviousClose: 100, Preopen: 101},
	}
	merged := MergePreopen(existing, models.PreopenHistoryEntry{
		Date: day(2024, 3, 15), Hour: 8, Minute: 30, PreviousClose: 100, Preopen: 103,
	})
	require.Len(t, merged, 2, "different minutes are different slots")

	merged = MergePreopen(merged, models.PreopenHistoryEntry{
		Date: day(2024, 3, 15), Hour: 8, Minute: 0, PreviousClose: 100, Preopen: 999,
	})
	require.Len(t, merged, 2)
	assert.InDelta(t, 101, merged[0].Preopen, 1e-9)
}

func TestCSVStoreRoundTrip(t *testing.T) {
	st := NewCSVStore(t.TempDir())

	rows := []models.ForumHistoryEntry{
		{Date: day(2024, 3, 14), Hour: 9, Minute: 1, NewTopics: 2, NewTopicsAnswers: 7, TopicsAnsweredToday: 4, Posts: 120},
		{Date: day(2024, 3, 15), Hour: 9, Minute: 2, NewTopics: 0, NewTopicsAnswers: 0, TopicsAnsweredToday: 1, Posts: 118},
	}
	require.NoError(t, st.SaveForum("AIR", rows))

	loaded, err := st.LoadForum("AIR")
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)

	// saving what was loaded must reproduce the identical table
	require.NoError(t, st.SaveForum("AIR", loaded))
	reloaded, err := st.LoadForum("AIR")
	require.NoError(t, err)
	assert.Equal(t, loaded, reloaded)
}

func TestCSVStorePreopenRoundTrip(t *testing.T) {
	st := NewCSVStore(t.TempDir())

	rows := []models.PreopenHistoryEntry{
		{Date: day(2024, 3, 15), Hour: 8, Minute: 12, PreviousClose: 102.5, Preopen: 98.7},
	}
	require.NoError(t, st.SavePreopen("AIR", rows))

	loaded, err := st.LoadPreopen("AIR")
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestCSVStoreMissingFileMeansEmptyHistory(t *testing.T) {
	st := NewCSVStore(t.TempDir())

	rows, err := st.LoadForum("NOPE")
	require.NoError(t, err)
	assert.Empty(t, rows)

	preopen, err := st.LoadPreopen("NOPE")
	require.NoError(t, err)
	assert.Empty(t, preopen)
}

func TestCSVStoreCorruptRowSurfaces(t *testing.T) {
	dir := t.TempDir()
	st := NewCSVStore(dir)
	require.NoError(t, st.SaveForum("AIR", []models.ForumHistoryEntry{{Date: day(2024, 3, 15), Hour: 9}}))

	path := filepath.Join(dir, "csv", "boursorama_forum_posts_count", "boursorama_forum_posts_count_AIR")
	require.NoError(t, os.WriteFile(path, []byte("date,hour,minute,n_new_topics,n_new_topics_answers,n_topics_answered_today,n_posts\n2024-03-15,nine,0,0,0,0,0\n"), 0o644))

	_, err := st.LoadForum("AIR")
	assert.Error(t, err)
}

func TestCSVStoreLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	st := NewCSVStore(dir)
	require.NoError(t, st.SaveForum("AIR", []models.ForumHistoryEntry{{Date: day(2024, 3, 15), Hour: 9}}))

	tableDir := filepath.Join(dir, "csv", "boursorama_forum_posts_count")
	entries, err := os.ReadDir(tableDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "boursorama_forum_posts_count_AIR", entries[0].Name())
}
