package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/epasquet/boursobot/internal/models"
)

const dateLayout = "2006-01-02"

var forumHeader = []string{
	"date", "hour", "minute",
	"n_new_topics", "n_new_topics_answers", "n_topics_answered_today", "n_posts",
}

var preopenHeader = []string{
	"date", "hour", "minute", "previous_close_value", "preopen_value",
}

// CSVStore keeps one CSV table per ticker per store kind under the data
// directory. Writes go through a temp file and a rename so a crash
// mid-write leaves the previous table intact, never a truncated one.
// Rename atomicity is filesystem-dependent; a stale .tmp file after a
// crash is harmless and overwritten on the next run.
type CSVStore struct {
	dataDir string
}

func NewCSVStore(dataDir string) *CSVStore {
	return &CSVStore{dataDir: dataDir}
}

// forumPath mirrors the historical layout; the forum table carries no .csv
// extension.
func (s *CSVStore) forumPath(ticker string) string {
	return filepath.Join(s.dataDir, "csv", "boursorama_forum_posts_count",
		"boursorama_forum_posts_count_"+ticker)
}

func (s *CSVStore) preopenPath(ticker string) string {
	return filepath.Join(s.dataDir, "csv", "boursorama_preopen",
		"boursorama_preopen_"+ticker+".csv")
}

func (s *CSVStore) LoadForum(ticker string) ([]models.ForumHistoryEntry, error) {
	records, err := readTable(s.forumPath(ticker))
	if err != nil || records == nil {
		return nil, err
	}

	rows := make([]models.ForumHistoryEntry, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(forumHeader) {
			return nil, fmt.Errorf("forum history for %s: row %d has %d fields, want %d", ticker, i+1, len(rec), len(forumHeader))
		}
		var row models.ForumHistoryEntry
		fields := []struct {
			dst *int
			val string
		}{
			{&row.Hour, rec[1]},
			{&row.Minute, rec[2]},
			{&row.NewTopics, rec[3]},
			{&row.NewTopicsAnswers, rec[4]},
			{&row.TopicsAnsweredToday, rec[5]},
			{&row.Posts, rec[6]},
		}
		row.Date, err = time.Parse(dateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("forum history for %s: row %d: %w", ticker, i+1, err)
		}
		for _, f := range fields {
			if *f.dst, err = strconv.Atoi(f.val); err != nil {
				return nil, fmt.Errorf("forum history for %s: row %d: %w", ticker, i+1, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVStore) SaveForum(ticker string, rows []models.ForumHistoryEntry) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Date.Format(dateLayout),
			strconv.Itoa(row.Hour),
			strconv.Itoa(row.Minute),
			strconv.Itoa(row.NewTopics),
			strconv.Itoa(row.NewTopicsAnswers),
			strconv.Itoa(row.TopicsAnsweredToday),
			strconv.Itoa(row.Posts),
		})
	}
	return writeTable(s.forumPath(ticker), forumHeader, records)
}

func (s *CSVStore) LoadPreopen(ticker string) ([]models.PreopenHistoryEntry, error) {
	records, err := readTable(s.preopenPath(ticker))
	if err != nil || records == nil {
		return nil, err
	}

	rows := make([]models.PreopenHistoryEntry, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(preopenHeader) {
			return nil, fmt.Errorf("preopen history for %s: row %d has %d fields, want %d", ticker, i+1, len(rec), len(preopenHeader))
		}
		var row models.PreopenHistoryEntry
		row.Date, err = time.Parse(dateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("preopen history for %s: row %d: %w", ticker, i+1, err)
		}
		if row.Hour, err = strconv.Atoi(rec[1]); err != nil {
			return nil, fmt.Errorf("preopen history for %s: row %d: %w", ticker, i+1, err)
		}
		if row.Minute, err = strconv.Atoi(rec[2]); err != nil {
			return nil, fmt.Errorf("preopen history for %s: row %d: %w", ticker, i+1, err)
		}
		if row.PreviousClose, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("preopen history for %s: row %d: %w", ticker, i+1, err)
		}
		if row.Preopen, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("preopen history for %s: row %d: %w", ticker, i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVStore) SavePreopen(ticker string, rows []models.PreopenHistoryEntry) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Date.Format(dateLayout),
			strconv.Itoa(row.Hour),
			strconv.Itoa(row.Minute),
			strconv.FormatFloat(row.PreviousClose, 'f', -1, 64),
			strconv.FormatFloat(row.Preopen, 'f', -1, 64),
		})
	}
	return writeTable(s.preopenPath(ticker), preopenHeader, records)
}

func (s *CSVStore) Close() error { return nil }

// readTable returns the data rows of a CSV table, nil when the file does
// not exist yet.
func readTable(path string) ([][]string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

func writeTable(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		file.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush records: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
