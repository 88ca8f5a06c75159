package cli

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/epasquet/boursobot/internal/models"
)

// exportForumCSV writes a ticker's forum history to a timestamped file
// under exports/.
func exportForumCSV(ticker string, rows []models.ForumHistoryEntry) (string, error) {
	if err := os.MkdirAll("exports", 0o755); err != nil {
		return "", fmt.Errorf("failed to create exports directory: %w", err)
	}
	filename := filepath.Join("exports",
		fmt.Sprintf("forum_history_%s_%s.csv", ticker, time.Now().Format("20060102_150405")))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"date", "hour", "minute",
		"n_new_topics", "n_new_topics_answers", "n_topics_answered_today", "n_posts",
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			strconv.Itoa(row.Hour),
			strconv.Itoa(row.Minute),
			strconv.Itoa(row.NewTopics),
			strconv.Itoa(row.NewTopicsAnswers),
			strconv.Itoa(row.TopicsAnsweredToday),
			strconv.Itoa(row.Posts),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record: %w", err)
		}
	}

	return filename, nil
}
